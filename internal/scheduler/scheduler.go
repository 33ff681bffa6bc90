// Package scheduler fires the tick on a fixed interval inside the process.
package scheduler

import (
	"context"
	"fmt"
	"time"

	domain "poker-platform/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// Ticker is anything that runs one tick.
type Ticker interface {
	Run(ctx context.Context) (domain.TickResult, error)
}

type Scheduler struct {
	sched  gocron.Scheduler
	ticker Ticker
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the tick job. Overlapping runs in this process are
// skipped; overlap across processes is handled by the tick lock.
func New(ticker Ticker, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{sched: sched, ticker: ticker, ctx: ctx, cancel: cancel}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("tick"),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule tick: %w", err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	res, err := s.ticker.Run(s.ctx)
	if err != nil {
		log.Error().Str("component", "scheduler").Err(err).Msg("tick failed")
		return
	}
	if !res.Ran {
		log.Debug().Str("component", "scheduler").Msg("tick skipped, lock held")
	}
}

func (s *Scheduler) Start() {
	s.sched.Start()
	log.Info().Str("component", "scheduler").Msg("tick scheduler started")
}

// Shutdown stops scheduling and cancels a tick in flight.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.sched.Shutdown()
}

// Package tick runs the periodic work of the platform under the execution
// lock: promotion, hand play on every active table, seat fill, supply and
// retention. A tick can be triggered redundantly; only one runs at a time
// across all processes and the rest report that they did nothing.
package tick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poker-platform/engine"
	"poker-platform/internal/locks"
	"poker-platform/internal/server/game"
	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Lifecycle is the tournament work a tick drives.
type Lifecycle interface {
	Promote(ctx context.Context, now time.Time) ([]domain.Tournament, error)
	FillSeats(ctx context.Context, now time.Time) (int, error)
	MaintainSupply(ctx context.Context, now time.Time) (int, error)
	Purge(ctx context.Context, now time.Time) (int, error)
	CheckCompletion(ctx context.Context, tournamentID string, now time.Time) (bool, error)
}

// Tables plays hands.
type Tables interface {
	NextHand(ctx context.Context, tournamentID string, now time.Time) (*domain.HandState, bool, error)
	Advance(ctx context.Context, tournamentID string, now time.Time, limit int) (game.AdvanceResult, error)
}

type Lister interface {
	ListTournaments(ctx context.Context, statuses ...domain.TournamentStatus) ([]domain.Tournament, error)
}

// extender is implemented by lockers that can push their expiry.
type extender interface {
	Extend(ctx context.Context, key string, ttl time.Duration) error
}

// holderReporter is implemented by lockers that can say who holds a key.
type holderReporter interface {
	Holder(ctx context.Context, key string) (string, time.Duration, error)
}

type Config struct {
	// LockTTL bounds how long a crashed tick keeps others out.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// MaxActionsPerTable bounds the automatic actions per table per tick.
	MaxActionsPerTable int `mapstructure:"max_actions_per_table"`
	// Parallelism is how many tables are worked on at once.
	Parallelism int           `mapstructure:"parallelism"`
	Interval    time.Duration `mapstructure:"interval"`
}

func DefaultConfig() Config {
	return Config{
		LockTTL:            30 * time.Second,
		MaxActionsPerTable: 50,
		Parallelism:        8,
		Interval:           2 * time.Second,
	}
}

type Coordinator struct {
	locker    locks.Locker
	lifecycle Lifecycle
	tables    Tables
	lister    Lister
	cfg       Config
	now       func() time.Time
}

func NewCoordinator(locker locks.Locker, lifecycle Lifecycle, tables Tables, lister Lister, cfg Config) *Coordinator {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 1
	}
	return &Coordinator{
		locker:    locker,
		lifecycle: lifecycle,
		tables:    tables,
		lister:    lister,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (c *Coordinator) Config() Config { return c.cfg }

// tableOutcome is what one table contributed to a tick.
type tableOutcome struct {
	started    int
	botActions int
	timeouts   int
	ended      int
	finished   bool
	faulted    bool
	err        error
}

// Run performs one tick. When another tick holds the lock it returns
// Ran false and no error. Step failures are logged and joined into the
// returned error; later steps still run.
func (c *Coordinator) Run(ctx context.Context) (domain.TickResult, error) {
	acquired, err := c.locker.Acquire(ctx, locks.TickRunnerKey, c.cfg.LockTTL)
	if err != nil {
		return domain.TickResult{}, fmt.Errorf("acquire tick lock: %w", err)
	}
	if !acquired {
		c.logHolder(ctx)
		return domain.TickResult{}, nil
	}
	defer func() {
		if err := c.locker.Release(context.WithoutCancel(ctx), locks.TickRunnerKey); err != nil {
			log.Error().Str("component", "tick").Err(err).Msg("failed to release tick lock")
		}
	}()

	started := time.Now()
	now := c.now()
	res := domain.TickResult{Ran: true}
	var errs []error

	promoted, err := c.lifecycle.Promote(ctx, now)
	res.Promoted = len(promoted)
	if err != nil {
		errs = append(errs, fmt.Errorf("promote: %w", err))
	}

	outcomes, err := c.playTables(ctx, now)
	if err != nil {
		errs = append(errs, err)
	}
	for _, o := range outcomes {
		res.HandsStarted += o.started
		res.BotActions += o.botActions
		res.Timeouts += o.timeouts
		res.HandsEnded += o.ended
		if o.finished {
			res.Finished++
		}
		if o.faulted {
			res.Faults++
		}
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}
	c.extend(ctx)

	if res.SeatsFilled, err = c.lifecycle.FillSeats(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("fill seats: %w", err))
	}
	if res.Created, err = c.lifecycle.MaintainSupply(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("maintain supply: %w", err))
	}
	if res.Purged, err = c.lifecycle.Purge(ctx, now); err != nil {
		errs = append(errs, fmt.Errorf("purge: %w", err))
	}

	for _, e := range errs {
		log.Error().Str("component", "tick").Err(e).Msg("tick step failed")
	}
	log.Debug().Str("component", "tick").
		Int("promoted", res.Promoted).Int("hands_started", res.HandsStarted).
		Int("bot_actions", res.BotActions).Int("timeouts", res.Timeouts).
		Int("hands_ended", res.HandsEnded).Int("finished", res.Finished).
		Int("seats_filled", res.SeatsFilled).Int("created", res.Created).
		Int("purged", res.Purged).Int("faults", res.Faults).
		Dur("took", time.Since(started)).Msg("tick done")
	return res, errors.Join(errs...)
}

// playTables works every playing table, a bounded number at a time. One
// table failing does not stop the others.
func (c *Coordinator) playTables(ctx context.Context, now time.Time) ([]tableOutcome, error) {
	tables, err := c.lister.ListTournaments(ctx, domain.StatusRunning, domain.StatusLateRegistration)
	if err != nil {
		return nil, fmt.Errorf("list playing tables: %w", err)
	}

	outcomes := make([]tableOutcome, len(tables))
	var g errgroup.Group
	g.SetLimit(c.cfg.Parallelism)
	for i := range tables {
		t := tables[i]
		g.Go(func() error {
			outcomes[i] = c.playTable(ctx, t, now)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

// playTable makes sure the table has a hand, plays the automatic seats and
// checks whether the tournament is over once a hand ends.
func (c *Coordinator) playTable(ctx context.Context, t domain.Tournament, now time.Time) tableOutcome {
	var out tableOutcome
	logger := log.With().Str("component", "tick").Str("tournament_id", t.ID).Logger()

	h, created, err := c.tables.NextHand(ctx, t.ID, now)
	switch {
	case errors.Is(err, engine.ErrIntegrity):
		out.faulted = true
		return out
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		// Nobody to play against: the table may be over.
		out.finished, out.err = c.complete(ctx, t.ID, now)
		return out
	case errors.Is(err, game.ErrNotPlaying):
		return out
	case err != nil:
		out.err = fmt.Errorf("next hand for %s: %w", t.ID, err)
		return out
	}
	if h.IntegrityFault != "" {
		out.faulted = true
		return out
	}
	if created {
		out.started = 1
		logger.Debug().Int("hand", h.HandNumber).Msg("hand started")
	}

	if h.Concluded {
		out.ended = 1
	} else {
		adv, err := c.tables.Advance(ctx, t.ID, now, c.cfg.MaxActionsPerTable)
		out.botActions, out.timeouts, out.faulted = adv.BotActions, adv.Timeouts, adv.Faulted
		if err != nil {
			out.err = fmt.Errorf("advance %s: %w", t.ID, err)
			return out
		}
		if adv.Concluded {
			out.ended = 1
		}
	}

	if out.ended > 0 {
		out.finished, out.err = c.complete(ctx, t.ID, now)
	}
	return out
}

func (c *Coordinator) complete(ctx context.Context, tournamentID string, now time.Time) (bool, error) {
	finished, err := c.lifecycle.CheckCompletion(ctx, tournamentID, now)
	if err != nil {
		return false, fmt.Errorf("check completion of %s: %w", tournamentID, err)
	}
	return finished, nil
}

// extend keeps the lock alive between the table pass and the rest of the
// tick when the locker supports it.
func (c *Coordinator) extend(ctx context.Context) {
	ext, ok := c.locker.(extender)
	if !ok {
		return
	}
	if err := ext.Extend(ctx, locks.TickRunnerKey, c.cfg.LockTTL); err != nil {
		log.Warn().Str("component", "tick").Err(err).Msg("failed to extend tick lock")
	}
}

func (c *Coordinator) logHolder(ctx context.Context) {
	ev := log.Debug().Str("component", "tick")
	if hr, ok := c.locker.(holderReporter); ok {
		holder, ttl, err := hr.Holder(ctx, locks.TickRunnerKey)
		if err != nil {
			ev = ev.AnErr("holder_err", err)
		} else {
			ev = ev.Str("holder", holder).Dur("expires_in", ttl)
		}
	}
	ev.Msg("tick already running elsewhere")
}

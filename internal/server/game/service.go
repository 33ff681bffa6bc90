// Package game applies actions to the live hand of a tournament. Every
// call loads the hand from the store, works on it under a per-tournament
// mutex and writes it back with a version check, so no table state lives
// in the process between calls.
package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"poker-platform/engine"
	"poker-platform/internal/bot"
	"poker-platform/internal/keylock"
	"poker-platform/internal/store"
	"poker-platform/internal/tournament"
	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
)

// Store is the persistence the game service needs.
type Store interface {
	GetTournament(ctx context.Context, id string) (*domain.Tournament, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]domain.Participant, error)
	GetHand(ctx context.Context, tournamentID string) (*domain.HandState, error)
	CreateHand(ctx context.Context, h *domain.HandState) error
	SaveHand(ctx context.Context, h *domain.HandState) error
	ConcludeHand(ctx context.Context, h *domain.HandState) (*domain.HandHistory, error)
}

type Config struct {
	// ActionTimeout is how long a human has to act. Zero disables timeouts.
	ActionTimeout time.Duration `mapstructure:"action_timeout"`
	// RequestRetention is how long applied request ids are remembered.
	RequestRetention time.Duration `mapstructure:"request_retention"`
}

func DefaultConfig() Config {
	return Config{
		ActionTimeout:    30 * time.Second,
		RequestRetention: 5 * time.Minute,
	}
}

// AdvanceResult is what one Advance call did to a table.
type AdvanceResult struct {
	BotActions int
	Timeouts   int
	Concluded  bool
	Faulted    bool
}

type Service struct {
	store   Store
	locks   *keylock.KeyLock
	tracker *ActionTracker
	cfg     Config
	now     func() time.Time
	newRand func() *rand.Rand
}

func NewService(s Store, cfg Config) *Service {
	return &Service{
		store:   s,
		locks:   keylock.New(),
		tracker: NewActionTracker(cfg.RequestRetention),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Close stops background cleanup.
func (s *Service) Close() {
	s.tracker.Stop()
}

func (s *Service) Config() Config { return s.cfg }

// SubmitAction applies a human's action to the live hand. When UserID is
// set the participant must be that user's seat; bot seats are never
// driven from outside. A rejected action leaves the stored hand unchanged.
func (s *Service) SubmitAction(ctx context.Context, req domain.ActionRequest) (*domain.HandState, error) {
	if req.TournamentID == "" || req.ParticipantID == "" || req.Action == "" {
		return nil, ErrInvalidRequest
	}
	if s.tracker.IsDuplicate(req.RequestID) {
		return nil, ErrDuplicateRequest
	}

	var hand *domain.HandState
	err := s.locks.WithLock(ctx, req.TournamentID, func() error {
		h, err := s.store.GetHand(ctx, req.TournamentID)
		if err != nil {
			return err
		}
		if h.IntegrityFault != "" {
			return fmt.Errorf("%w: %s", engine.ErrIntegrity, h.IntegrityFault)
		}
		seat := h.SeatByParticipant(req.ParticipantID)
		if seat == nil {
			return engine.ErrParticipantNotSeated
		}
		if seat.Occupant.IsBot() || (req.UserID != "" && seat.Occupant != domain.Human(req.UserID)) {
			return ErrNotYourSeat
		}

		err = engine.NewGame(h).ProcessAction(req.ParticipantID, req.Action, req.Amount)
		if errors.Is(err, engine.ErrIntegrity) {
			log.Error().Str("component", "game").Str("tournament_id", h.TournamentID).
				Int("hand", h.HandNumber).Err(err).Msg("hand frozen")
			if serr := s.persist(ctx, h); serr != nil {
				log.Error().Str("component", "game").Err(serr).Msg("failed to save faulted hand")
			}
			return err
		}
		if err != nil {
			return err
		}
		if err := s.persist(ctx, h); err != nil {
			return err
		}
		hand = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tracker.MarkProcessed(req)
	log.Info().Str("component", "game").Str("tournament_id", req.TournamentID).
		Str("participant", req.ParticipantID).Str("action", string(req.Action)).
		Int("amount", req.Amount).Msg("action applied")
	return hand, nil
}

// NextHand makes sure the tournament has a hand. An existing hand is
// returned unchanged with created false, so calling it again is harmless.
// A hand that ends as soon as it is dealt, because the blinds put every
// player all-in, is concluded straight away.
func (s *Service) NextHand(ctx context.Context, tournamentID string, now time.Time) (*domain.HandState, bool, error) {
	var (
		hand    *domain.HandState
		created bool
	)
	err := s.locks.WithLock(ctx, tournamentID, func() error {
		h, err := s.store.GetHand(ctx, tournamentID)
		if err == nil {
			hand = h
			return nil
		}
		if !errors.Is(err, store.ErrHandNotFound) {
			return err
		}

		t, err := s.store.GetTournament(ctx, tournamentID)
		if err != nil {
			return err
		}
		if !t.Status.Playing() {
			return ErrNotPlaying
		}
		participants, err := s.store.ListParticipants(ctx, tournamentID)
		if err != nil {
			return err
		}
		level, err := tournament.BlindsAt(t, now)
		if err != nil {
			return err
		}

		cfg := engine.HandConfig{
			TournamentID:       tournamentID,
			HandNumber:         t.HandsPlayed + 1,
			PreviousButtonSeat: t.ButtonSeat,
			SmallBlind:         level.SmallBlind,
			BigBlind:           level.BigBlind,
			Now:                now,
		}
		if s.newRand != nil {
			cfg.Rng = s.newRand()
		}
		h, err = engine.NewHand(cfg, seatInputs(participants))
		if errors.Is(err, engine.ErrIntegrity) && h != nil {
			log.Error().Str("component", "game").Str("tournament_id", tournamentID).Err(err).Msg("new hand frozen")
			if cerr := s.store.CreateHand(ctx, h); cerr != nil {
				log.Error().Str("component", "game").Err(cerr).Msg("failed to store faulted hand")
			}
			return err
		}
		if err != nil {
			return err
		}

		if h.Concluded {
			if _, err := s.store.ConcludeHand(ctx, h); err != nil {
				return err
			}
		} else {
			s.armDeadline(h, now)
			if err := s.store.CreateHand(ctx, h); err != nil {
				if !errors.Is(err, store.ErrHandExists) {
					return err
				}
				// Another process dealt first.
				existing, gerr := s.store.GetHand(ctx, tournamentID)
				if gerr != nil {
					return gerr
				}
				hand = existing
				return nil
			}
		}

		hand, created = h, true
		log.Info().Str("component", "game").Str("tournament_id", tournamentID).
			Int("hand", h.HandNumber).Int("players", len(h.Seats)).
			Int("sb", h.SmallBlind).Int("bb", h.BigBlind).Bool("concluded", h.Concluded).
			Msg("hand dealt")
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return hand, created, nil
}

// Advance plays the seats that do not need a person: bots act by policy and
// humans whose deadline has passed get the default action. It stops at a
// human with time left, at the end of the hand, or after limit actions;
// a limit of zero or less plays on until one of the others. A faulted hand
// is left alone and reported in the result.
func (s *Service) Advance(ctx context.Context, tournamentID string, now time.Time, limit int) (AdvanceResult, error) {
	var res AdvanceResult

	err := s.locks.WithLock(ctx, tournamentID, func() error {
		h, err := s.store.GetHand(ctx, tournamentID)
		if errors.Is(err, store.ErrHandNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if h.IntegrityFault != "" {
			res.Faulted = true
			return nil
		}

		g := engine.NewGame(h)
		acted := 0
	loop:
		for limit <= 0 || acted < limit {
			seat := h.TurnHolder()
			if seat == nil {
				break
			}

			var (
				action domain.PlayerAction
				amount int
			)
			switch {
			case seat.Occupant.IsBot():
				d := bot.Decide(bot.ViewFor(h, seat))
				action, amount = d.Action, d.Amount
				res.BotActions++
				log.Debug().Str("component", "game").Str("tournament_id", tournamentID).
					Str("participant", seat.ParticipantID).Str("action", string(action)).
					Int("amount", amount).Str("reason", d.Reasoning).Msg("bot decided")
			case h.ActionDeadline != nil && !now.Before(*h.ActionDeadline):
				action = g.DefaultAction(seat)
				res.Timeouts++
				log.Info().Str("component", "game").Str("tournament_id", tournamentID).
					Str("participant", seat.ParticipantID).Str("action", string(action)).Msg("action timed out")
			default:
				break loop
			}

			err := g.ProcessAction(seat.ParticipantID, action, amount)
			if err != nil && !errors.Is(err, engine.ErrIntegrity) {
				log.Warn().Str("component", "game").Str("tournament_id", tournamentID).
					Str("participant", seat.ParticipantID).Str("action", string(action)).
					Err(err).Msg("automatic action rejected, folding")
				err = g.ProcessAction(seat.ParticipantID, domain.ActionFold, 0)
			}
			acted++
			if errors.Is(err, engine.ErrIntegrity) {
				res.Faulted = true
				log.Error().Str("component", "game").Str("tournament_id", tournamentID).
					Int("hand", h.HandNumber).Err(err).Msg("hand frozen")
				break
			}
			if err != nil {
				return err
			}
			if h.Concluded {
				break
			}
		}

		if acted == 0 {
			return nil
		}
		res.Concluded = h.Concluded
		h.UpdatedAt = now
		return s.persistAt(ctx, h, now)
	})
	return res, err
}

// View returns the live hand as viewerParticipantID may see it.
func (s *Service) View(ctx context.Context, tournamentID, viewerParticipantID string) (*domain.HandState, error) {
	h, err := s.store.GetHand(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return h.PublicView(viewerParticipantID), nil
}

func (s *Service) persist(ctx context.Context, h *domain.HandState) error {
	now := s.now()
	h.UpdatedAt = now
	return s.persistAt(ctx, h, now)
}

// persistAt writes h back: a concluded hand is settled and cleared, any
// other hand is saved with the turn holder's deadline armed.
func (s *Service) persistAt(ctx context.Context, h *domain.HandState, now time.Time) error {
	if h.Concluded && h.IntegrityFault == "" {
		hist, err := s.store.ConcludeHand(ctx, h)
		if err != nil {
			return err
		}
		log.Info().Str("component", "game").Str("tournament_id", h.TournamentID).
			Int("hand", hist.HandNumber).Int("pot", hist.Pot).Str("label", hist.HandLabel).
			Msg("hand concluded")
		return nil
	}
	s.armDeadline(h, now)
	return s.store.SaveHand(ctx, h)
}

// armDeadline starts the clock when a human holds the turn and none is
// running.
func (s *Service) armDeadline(h *domain.HandState, now time.Time) {
	if s.cfg.ActionTimeout <= 0 || h.ActionDeadline != nil {
		return
	}
	if seat := h.TurnHolder(); seat != nil && seat.Occupant.IsHuman() {
		d := now.Add(s.cfg.ActionTimeout)
		h.ActionDeadline = &d
	}
}

func seatInputs(participants []domain.Participant) []engine.SeatInput {
	inputs := make([]engine.SeatInput, 0, len(participants))
	for _, p := range participants {
		if p.Status != domain.ParticipantActive || p.Stack <= 0 {
			continue
		}
		inputs = append(inputs, engine.SeatInput{
			ParticipantID: p.ID,
			Occupant:      p.Occupant,
			SeatNumber:    p.SeatNumber,
			Stack:         p.Stack,
		})
	}
	return inputs
}

// Package recovery inspects live hands after a restart. Hands are already
// durable, so nothing is rebuilt in memory; the scan reports hands frozen
// by an integrity fault and voids hands left behind by tournaments that no
// longer deal.
package recovery

import (
	"context"
	"errors"
	"fmt"

	"poker-platform/internal/store"
	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
)

var ErrNotFaulted = errors.New("hand is not frozen")

type Store interface {
	ListHands(ctx context.Context) ([]*domain.HandState, error)
	GetHand(ctx context.Context, tournamentID string) (*domain.HandState, error)
	DeleteHand(ctx context.Context, tournamentID string, version int) error
	GetTournament(ctx context.Context, id string) (*domain.Tournament, error)
}

// Fault is one frozen hand awaiting an operator.
type Fault struct {
	TournamentID string `json:"tournamentId"`
	HandNumber   int    `json:"handNumber"`
	Reason       string `json:"reason"`
}

type Report struct {
	Live    int     `json:"live"`
	Faulted []Fault `json:"faulted"`
	Voided  int     `json:"voided"`
}

// TableRecovery scans and repairs live hands.
type TableRecovery struct {
	store Store
}

func NewTableRecovery(s Store) *TableRecovery {
	return &TableRecovery{store: s}
}

// Scan walks every live hand. Hands whose tournament is gone or no longer
// plays are voided; faulted hands are reported and left for VoidFaultedHand.
func (tr *TableRecovery) Scan(ctx context.Context) (Report, error) {
	logger := log.With().Str("component", "recovery").Logger()
	report := Report{Faulted: []Fault{}}

	hands, err := tr.store.ListHands(ctx)
	if err != nil {
		return report, err
	}

	for _, h := range hands {
		t, err := tr.store.GetTournament(ctx, h.TournamentID)
		if err != nil && !errors.Is(err, store.ErrTournamentNotFound) {
			return report, err
		}
		if t == nil || !t.Status.Playing() {
			if err := tr.store.DeleteHand(ctx, h.TournamentID, h.Version); err != nil {
				logger.Error().Err(err).Str("tournament_id", h.TournamentID).Msg("failed to void orphaned hand")
				continue
			}
			logger.Warn().Str("tournament_id", h.TournamentID).Int("hand", h.HandNumber).Msg("voided orphaned hand")
			report.Voided++
			continue
		}

		report.Live++
		if h.IntegrityFault != "" {
			report.Faulted = append(report.Faulted, Fault{
				TournamentID: h.TournamentID,
				HandNumber:   h.HandNumber,
				Reason:       h.IntegrityFault,
			})
			logger.Error().Str("tournament_id", h.TournamentID).Int("hand", h.HandNumber).
				Str("reason", h.IntegrityFault).Msg("hand is frozen")
		}
	}

	logger.Info().Int("live", report.Live).Int("faulted", len(report.Faulted)).
		Int("voided", report.Voided).Msg("recovery scan complete")
	return report, nil
}

// VoidFaultedHand discards a frozen hand. Every seat keeps its stack from
// before the deal and the next tick deals the same hand number again.
func (tr *TableRecovery) VoidFaultedHand(ctx context.Context, tournamentID string) (*domain.HandState, error) {
	h, err := tr.store.GetHand(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if h.IntegrityFault == "" {
		return nil, ErrNotFaulted
	}
	if err := tr.store.DeleteHand(ctx, tournamentID, h.Version); err != nil {
		return nil, fmt.Errorf("void hand %d: %w", h.HandNumber, err)
	}
	log.Warn().Str("component", "recovery").Str("tournament_id", tournamentID).
		Int("hand", h.HandNumber).Str("reason", h.IntegrityFault).Msg("voided frozen hand")
	return h, nil
}

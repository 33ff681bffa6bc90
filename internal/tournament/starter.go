package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poker-platform/internal/store"
	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
)

// nextStatus is where a tournament due at now should be, or "" when it
// stays put.
func nextStatus(t *domain.Tournament, now time.Time) domain.TournamentStatus {
	lateOpen := t.LateRegistrationUntil != nil && now.Before(*t.LateRegistrationUntil)
	switch t.Status {
	case domain.StatusRegistering:
		if now.Before(t.ScheduledStartTime) {
			return ""
		}
		if lateOpen {
			return domain.StatusLateRegistration
		}
		return domain.StatusRunning
	case domain.StatusLateRegistration:
		if !lateOpen {
			return domain.StatusRunning
		}
	}
	return ""
}

// Promote moves every due tournament forward and returns the ones that
// started dealing on this call. A tournament short of min_players at its
// start is topped up with bots first, so it can deal in the same tick.
func (m *Manager) Promote(ctx context.Context, now time.Time) ([]domain.Tournament, error) {
	due, err := m.store.ListTournaments(ctx, domain.StatusRegistering, domain.StatusLateRegistration)
	if err != nil {
		return nil, err
	}

	var started []domain.Tournament
	for i := range due {
		t := &due[i]
		to := nextStatus(t, now)
		if to == "" {
			continue
		}

		if t.Status == domain.StatusRegistering {
			if _, err := m.fillTournament(ctx, t, t.MaxPlayers); err != nil {
				log.Error().Err(err).Str("component", "lifecycle").Str("tournament_id", t.ID).Msg("failed to seat bots before start")
			}
		}

		if err := m.store.AdvanceStatus(ctx, t.ID, t.Status, to, now); err != nil {
			if errors.Is(err, store.ErrStatusConflict) {
				continue
			}
			return started, fmt.Errorf("promote %s: %w", t.ID, err)
		}
		log.Info().Str("component", "lifecycle").Str("tournament_id", t.ID).
			Str("from", string(t.Status)).Str("to", string(to)).Msg("tournament promoted")

		wasPlaying := t.Status.Playing()
		t.Status = to
		if t.StartedAt == nil && to.Playing() {
			at := now
			t.StartedAt = &at
		}
		if !wasPlaying && to.Playing() {
			started = append(started, *t)
		}
	}
	return started, nil
}

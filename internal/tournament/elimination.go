package tournament

import (
	"context"
	"sort"
	"time"

	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
)

// ShouldFinish reports whether a playing tournament is over. A tournament
// ends when at most one active participant is left; a cash table ends
// after its session of hands.
func ShouldFinish(t *domain.Tournament, participants []domain.Participant, cashSessionHands int) bool {
	if !t.Status.Playing() {
		return false
	}
	if t.Kind == domain.KindCash {
		return cashSessionHands > 0 && t.HandsPlayed >= cashSessionHands
	}
	if t.Status == domain.StatusLateRegistration {
		return false
	}
	return activeCount(participants) <= 1
}

func activeCount(participants []domain.Participant) int {
	n := 0
	for _, p := range participants {
		if p.Status == domain.ParticipantActive {
			n++
		}
	}
	return n
}

// CheckCompletion finishes and settles the tournament when it is over.
func (m *Manager) CheckCompletion(ctx context.Context, tournamentID string, now time.Time) (bool, error) {
	t, err := m.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	participants, err := m.store.ListParticipants(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	if !ShouldFinish(t, participants, m.cfg.CashSessionHands) {
		return false, nil
	}

	settlement, err := m.store.FinishTournament(ctx, tournamentID, now)
	if err != nil {
		return false, err
	}
	if settlement == nil {
		return false, nil
	}
	log.Info().Str("component", "lifecycle").Str("tournament_id", tournamentID).
		Str("kind", string(t.Kind)).Int("hands", t.HandsPlayed).
		Interface("payouts", settlement.Payouts).Msg("tournament finished")
	return true, nil
}

// Standings orders participants by status, then stack, biggest first.
func Standings(participants []domain.Participant) []domain.Participant {
	out := make([]domain.Participant, len(participants))
	copy(out, participants)
	sort.SliceStable(out, func(i, j int) bool { return ranksAbove(out[i], out[j]) })
	return out
}

func ranksAbove(a, b domain.Participant) bool {
	aActive := a.Status == domain.ParticipantActive
	bActive := b.Status == domain.ParticipantActive
	if aActive != bActive {
		return aActive
	}
	return a.Stack > b.Stack
}

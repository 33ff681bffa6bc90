package tournament

import (
	"context"
	"fmt"
	"time"

	domain "poker-platform/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MaintainSupply tops every kind back up to the configured number of open
// tournaments. New starts are staggered after the lead time.
func (m *Manager) MaintainSupply(ctx context.Context, now time.Time) (int, error) {
	counts, err := m.store.CountOpenByKind(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, kind := range m.cfg.Kinds {
		preset, err := GetKindPreset(kind)
		if err != nil {
			return created, err
		}
		for i := counts[kind]; i < m.cfg.SupplyTarget; i++ {
			t := m.newFromPreset(preset, now, i)
			if err := m.store.CreateTournament(ctx, t); err != nil {
				return created, fmt.Errorf("create %s: %w", kind, err)
			}
			created++
			log.Info().Str("component", "lifecycle").Str("tournament_id", t.ID).
				Str("kind", string(kind)).Int("buy_in", t.BuyIn).
				Time("start", t.ScheduledStartTime).Msg("tournament created")
		}
	}
	return created, nil
}

// newFromPreset builds the slot-th open tournament of a kind.
func (m *Manager) newFromPreset(p KindPreset, now time.Time, slot int) *domain.Tournament {
	n := m.seq.Add(1)
	buyIn := p.BuyInTiers[int(n-1)%len(p.BuyInTiers)]
	start := now.Add(p.StartLead + time.Duration(slot)*p.Stagger).UTC()
	name := fmt.Sprintf("%s %d", p.NamePrefix, buyIn)

	t := &domain.Tournament{
		ID:                 uuid.New().String(),
		Name:               name,
		Slug:               GenerateSlug(name),
		Kind:               p.Kind,
		Status:             domain.StatusRegistering,
		Structure:          p.Structure,
		BuyIn:              buyIn,
		StartingStack:      p.StartingStack,
		MinPlayers:         p.MinPlayers,
		MaxPlayers:         p.MaxPlayers,
		ScheduledStartTime: start,
	}
	if p.LateRegWindow > 0 {
		until := start.Add(p.LateRegWindow)
		t.LateRegistrationUntil = &until
	}
	return t
}

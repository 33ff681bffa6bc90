package tournament

import (
	"context"
	"hash/fnv"
	"time"

	domain "poker-platform/models"

	"github.com/rs/zerolog/log"
)

// FillSeats seats bots in open tournaments and running cash tables.
// Tournaments that are running without late registration are never
// refilled, so they can play down to a winner. Fill is throttled to
// FillPerTick per tournament unless the start is within FillLead or play
// has begun, in which case every free seat is filled.
func (m *Manager) FillSeats(ctx context.Context, now time.Time) (int, error) {
	ts, err := m.store.ListTournaments(ctx, domain.StatusRegistering, domain.StatusLateRegistration, domain.StatusRunning)
	if err != nil {
		return 0, err
	}

	total := 0
	for i := range ts {
		t := &ts[i]
		if t.Status == domain.StatusRunning && t.Kind != domain.KindCash {
			continue
		}

		if t.Status == domain.StatusRegistering && t.SeatCount > t.MaxPlayers {
			if removed, err := m.store.PruneBots(ctx, t.ID); err != nil {
				log.Error().Err(err).Str("component", "lifecycle").Str("tournament_id", t.ID).Msg("failed to prune bots")
			} else if removed > 0 {
				log.Info().Str("component", "lifecycle").Str("tournament_id", t.ID).Int("removed", removed).Msg("pruned excess bots")
			}
			continue
		}
		if t.Full() {
			continue
		}

		limit := t.MaxPlayers - t.SeatCount
		imminent := !t.ScheduledStartTime.After(now.Add(m.cfg.FillLead))
		if !imminent && !t.Status.Playing() && limit > m.cfg.FillPerTick {
			limit = m.cfg.FillPerTick
		}

		added, err := m.fillTournament(ctx, t, limit)
		if err != nil {
			log.Error().Err(err).Str("component", "lifecycle").Str("tournament_id", t.ID).Msg("seat fill failed")
			continue
		}
		total += added
	}
	return total, nil
}

// fillTournament seats up to limit bots that are not yet at the table.
func (m *Manager) fillTournament(ctx context.Context, t *domain.Tournament, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}
	roster, err := m.store.ListBots(ctx)
	if err != nil {
		return 0, err
	}
	participants, err := m.store.ListParticipants(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	seated := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.Occupant.IsBot() {
			seated[p.Occupant.ID] = true
		}
	}

	// Start from a different roster offset per tournament so tables do not
	// all get the same names.
	offset := 0
	if len(roster) > 0 {
		offset = int(hashString(t.ID) % uint32(len(roster)))
	}
	candidates := make([]domain.BotIdentity, 0, limit)
	for i := 0; i < len(roster) && len(candidates) < limit; i++ {
		b := roster[(offset+i)%len(roster)]
		if !seated[b.ID] {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	added, err := m.store.AddBots(ctx, t.ID, candidates, StartingStack(t))
	if err != nil {
		return 0, err
	}
	if len(added) > 0 {
		log.Debug().Str("component", "lifecycle").Str("tournament_id", t.ID).Int("bots", len(added)).Msg("seated bots")
	}
	t.SeatCount += len(added)
	return len(added), nil
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

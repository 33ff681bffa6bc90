package tournament

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Purge archives and deletes tournaments that finished more than the
// retention window ago. A tournament whose archive fails is kept for the
// next pass.
func (m *Manager) Purge(ctx context.Context, now time.Time) (int, error) {
	old, err := m.store.ListFinishedBefore(ctx, now.Add(-m.cfg.Retention))
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, t := range old {
		if m.archiver != nil {
			participants, err := m.store.ListParticipants(ctx, t.ID)
			if err != nil {
				return purged, err
			}
			history, err := m.store.ListHistory(ctx, t.ID, m.cfg.ArchiveHistoryLimit)
			if err != nil {
				return purged, err
			}
			if err := m.archiver.ArchiveTournament(ctx, t, participants, history); err != nil {
				log.Warn().Err(err).Str("component", "lifecycle").Str("tournament_id", t.ID).Msg("archive failed, keeping tournament")
				continue
			}
		}
		if err := m.store.PurgeTournament(ctx, t.ID); err != nil {
			return purged, err
		}
		purged++
		log.Info().Str("component", "lifecycle").Str("tournament_id", t.ID).Msg("tournament purged")
	}
	return purged, nil
}

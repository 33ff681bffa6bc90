package recovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"poker-platform/engine"
	"poker-platform/internal/currency"
	"poker-platform/internal/db"
	"poker-platform/internal/store"
	domain "poker-platform/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	gdb, err := db.New(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return store.New(gdb, currency.NewService(gdb))
}

// tableWithHand creates a running cash table with two bots and a live hand.
func tableWithHand(t *testing.T, s *store.Store, fault string) *domain.HandState {
	t.Helper()
	ctx := context.Background()
	id := uuid.New().String()
	tour := &domain.Tournament{
		ID: id, Name: "Cash " + id[:8], Slug: "cash-" + id, Kind: domain.KindCash,
		Status: domain.StatusRunning, StartingStack: 1000, MinPlayers: 2, MaxPlayers: 6,
		ScheduledStartTime: time.Now().UTC(),
	}
	require.NoError(t, s.CreateTournament(ctx, tour))
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	added, err := s.AddBots(ctx, id, bots[:2], 1000)
	require.NoError(t, err)

	inputs := make([]engine.SeatInput, 0, len(added))
	for _, p := range added {
		inputs = append(inputs, engine.SeatInput{ParticipantID: p.ID, Occupant: p.Occupant, SeatNumber: p.SeatNumber, Stack: p.Stack})
	}
	h, err := engine.NewHand(engine.HandConfig{
		TournamentID: id, HandNumber: 1, SmallBlind: 10, BigBlind: 20, Now: time.Now().UTC(),
	}, inputs)
	require.NoError(t, err)
	h.IntegrityFault = fault
	require.NoError(t, s.CreateHand(ctx, h))
	return h
}

func TestScan_ReportsFaultsAndVoidsOrphans(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	healthy := tableWithHand(t, s, "")
	frozen := tableWithHand(t, s, "chips in play changed from 2000 to 1990")
	orphan := tableWithHand(t, s, "")
	require.NoError(t, s.AdvanceStatus(ctx, orphan.TournamentID, domain.StatusRunning, domain.StatusFinished, time.Now()))

	report, err := NewTableRecovery(s).Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Live)
	assert.Equal(t, 1, report.Voided)
	require.Len(t, report.Faulted, 1)
	assert.Equal(t, Fault{TournamentID: frozen.TournamentID, HandNumber: 1, Reason: frozen.IntegrityFault}, report.Faulted[0])

	_, err = s.GetHand(ctx, orphan.TournamentID)
	assert.ErrorIs(t, err, store.ErrHandNotFound)
	_, err = s.GetHand(ctx, healthy.TournamentID)
	assert.NoError(t, err)
}

func TestVoidFaultedHand(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tr := NewTableRecovery(s)

	healthy := tableWithHand(t, s, "")
	_, err := tr.VoidFaultedHand(ctx, healthy.TournamentID)
	assert.ErrorIs(t, err, ErrNotFaulted)

	frozen := tableWithHand(t, s, "pot 10 does not match contributions 30")
	voided, err := tr.VoidFaultedHand(ctx, frozen.TournamentID)
	require.NoError(t, err)
	assert.Equal(t, 1, voided.HandNumber)

	_, err = s.GetHand(ctx, frozen.TournamentID)
	assert.ErrorIs(t, err, store.ErrHandNotFound)
	tour, err := s.GetTournament(ctx, frozen.TournamentID)
	require.NoError(t, err)
	assert.Zero(t, tour.HandsPlayed)

	_, err = tr.VoidFaultedHand(ctx, frozen.TournamentID)
	assert.ErrorIs(t, err, store.ErrHandNotFound)
}

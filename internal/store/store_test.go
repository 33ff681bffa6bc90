package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"poker-platform/engine"
	"poker-platform/internal/currency"
	"poker-platform/internal/db"
	"poker-platform/internal/migrations"
	domain "poker-platform/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.New(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return New(gdb, currency.NewService(gdb))
}

func newTournament(t *testing.T, s *Store, kind domain.Kind, status domain.TournamentStatus, maxPlayers, buyIn int) *domain.Tournament {
	t.Helper()
	id := uuid.New().String()
	tour := &domain.Tournament{
		ID:                 id,
		Name:               "Test " + string(kind),
		Slug:               "test-" + id,
		Kind:               kind,
		Status:             status,
		Structure:          "turbo",
		BuyIn:              buyIn,
		StartingStack:      1500,
		MinPlayers:         2,
		MaxPlayers:         maxPlayers,
		ScheduledStartTime: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.CreateTournament(context.Background(), tour))
	return tour
}

func newUser(t *testing.T, s *Store, balance int) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, s.CreateUser(context.Background(), &domain.User{ID: id, Username: "u" + id[:8], Balance: balance}))
	return id
}

func TestTournament_CreateGetList(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	a := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 6, 100)
	newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 200)

	got, err := s.GetTournament(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Slug, got.Slug)
	assert.Equal(t, domain.StatusRegistering, got.Status)
	assert.Nil(t, got.StartedAt)

	_, err = s.GetTournament(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	open, err := s.ListTournaments(ctx, domain.StatusRegistering, domain.StatusLateRegistration)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, a.ID, open[0].ID)

	all, err := s.ListTournaments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	counts, err := s.CountOpenByKind(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.KindSitAndGo])
	assert.Equal(t, 0, counts[domain.KindCash])
}

func TestTournament_AdvanceStatusIsConditional(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindScheduled, domain.StatusRegistering, 9, 0)
	now := time.Now().UTC()

	require.NoError(t, s.AdvanceStatus(ctx, tour.ID, domain.StatusRegistering, domain.StatusRunning, now))
	assert.ErrorIs(t, s.AdvanceStatus(ctx, tour.ID, domain.StatusRegistering, domain.StatusRunning, now), ErrStatusConflict)
	assert.Error(t, s.AdvanceStatus(ctx, tour.ID, domain.StatusRunning, domain.StatusRegistering, now), "no regressions")

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, got.Status)
	require.NotNil(t, got.StartedAt)
	assert.WithinDuration(t, now, *got.StartedAt, time.Second)
}

func TestRegisterHuman_DebitsAndSeats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 2, 100)
	alice := newUser(t, s, 1000)

	p, err := s.RegisterHuman(ctx, tour.ID, alice, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, p.SeatNumber)
	assert.Equal(t, 1500, p.Stack)
	assert.True(t, p.Occupant.IsHuman())

	u, err := s.GetUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 900, u.Balance)

	_, err = s.RegisterHuman(ctx, tour.ID, alice, time.Now())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	bob := newUser(t, s, 1000)
	_, err = s.RegisterHuman(ctx, tour.ID, bob, time.Now())
	require.NoError(t, err)

	carol := newUser(t, s, 1000)
	_, err = s.RegisterHuman(ctx, tour.ID, carol, time.Now())
	assert.ErrorIs(t, err, ErrTournamentFull)

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SeatCount)
}

func TestRegisterHuman_InsufficientBalanceRollsBack(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 6, 500)
	poor := newUser(t, s, 100)

	_, err := s.RegisterHuman(ctx, tour.ID, poor, time.Now())
	assert.ErrorIs(t, err, currency.ErrInsufficientBalance)

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SeatCount)
	ps, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestRegisterHuman_ClosedStatuses(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	user := newUser(t, s, 10000)

	running := newTournament(t, s, domain.KindScheduled, domain.StatusRunning, 6, 100)
	_, err := s.RegisterHuman(ctx, running.ID, user, time.Now())
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	cash := newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 400)
	p, err := s.RegisterHuman(ctx, cash.ID, user, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 400, p.Stack, "cash tables seat the buy-in")
}

func TestAddBots_FillsLowestFreeSeatsUpToMax(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 4, 100)
	user := newUser(t, s, 1000)
	_, err := s.RegisterHuman(ctx, tour.ID, user, time.Now())
	require.NoError(t, err)

	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, len(migrations.DefaultBotNames))

	added, err := s.AddBots(ctx, tour.ID, bots[:2], 1500)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, 2, added[0].SeatNumber)
	assert.Equal(t, 3, added[1].SeatNumber)

	// Already seated bots are skipped and the table stops at max.
	added, err = s.AddBots(ctx, tour.ID, bots, 1500)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, 4, added[0].SeatNumber)

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatCount)
	ps, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, ps, 4)
}

func TestPruneBots_RemovesNewestExcess(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 4, 0)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	_, err = s.AddBots(ctx, tour.ID, bots[:4], 1500)
	require.NoError(t, err)

	removed, err := s.PruneBots(ctx, tour.ID)
	require.NoError(t, err)
	assert.Zero(t, removed, "nothing to prune at max")

	require.NoError(t, s.db.Exec("UPDATE tournaments SET max_players = 2 WHERE id = ?", tour.ID).Error)
	removed, err = s.PruneBots(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.SeatCount)
	ps, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, ps, 2)
}

func seatHand(t *testing.T, s *Store, tour *domain.Tournament) *domain.HandState {
	t.Helper()
	ps, err := s.ListParticipants(context.Background(), tour.ID)
	require.NoError(t, err)
	inputs := make([]engine.SeatInput, 0, len(ps))
	for _, p := range ps {
		inputs = append(inputs, engine.SeatInput{ParticipantID: p.ID, Occupant: p.Occupant, SeatNumber: p.SeatNumber, Stack: p.Stack})
	}
	h, err := engine.NewHand(engine.HandConfig{
		TournamentID: tour.ID,
		HandNumber:   tour.HandsPlayed + 1,
		SmallBlind:   10,
		BigBlind:     20,
		Now:          time.Now().UTC(),
	}, inputs)
	require.NoError(t, err)
	return h
}

func TestHand_CreateIsUniqueAndSaveIsVersioned(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 0)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	_, err = s.AddBots(ctx, tour.ID, bots[:3], 1000)
	require.NoError(t, err)

	_, err = s.GetHand(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrHandNotFound)

	h := seatHand(t, s, tour)
	require.NoError(t, s.CreateHand(ctx, h))
	assert.Equal(t, 1, h.Version)

	dup := seatHand(t, s, tour)
	assert.ErrorIs(t, s.CreateHand(ctx, dup), ErrHandExists)

	stale, err := s.GetHand(ctx, tour.ID)
	require.NoError(t, err)

	holder := h.TurnHolder()
	require.NotNil(t, holder)
	require.NoError(t, engine.NewGame(h).ProcessAction(holder.ParticipantID, domain.ActionCall, 0))
	require.NoError(t, s.SaveHand(ctx, h))
	assert.Equal(t, 2, h.Version)

	stale.Phase = domain.PhaseRiver
	assert.ErrorIs(t, s.SaveHand(ctx, stale), ErrVersionConflict)
	assert.Equal(t, 1, stale.Version)

	got, err := s.GetHand(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, h.Pot, got.Pot)
	assert.Equal(t, domain.ActionCall, got.SeatByParticipant(holder.ParticipantID).LastAction)
}

func TestHand_ConcludeWritesHistoryStacksAndButton(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 0)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	_, err = s.AddBots(ctx, tour.ID, bots[:2], 1000)
	require.NoError(t, err)

	h := seatHand(t, s, tour)
	require.NoError(t, s.CreateHand(ctx, h))
	folder := h.TurnHolder()
	require.NoError(t, engine.NewGame(h).ProcessAction(folder.ParticipantID, domain.ActionFold, 0))
	require.True(t, h.Concluded)

	hist, err := s.ConcludeHand(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 30, hist.Pot)
	assert.Equal(t, 1, hist.HandNumber)
	require.Len(t, hist.Winners, 1)

	_, err = s.GetHand(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrHandNotFound)

	_, err = s.ConcludeHand(ctx, h)
	assert.ErrorIs(t, err, ErrVersionConflict, "a hand concludes once")

	ps, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	stacks := map[string]int{}
	for _, p := range ps {
		stacks[p.ID] = p.Stack
	}
	assert.Equal(t, 990, stacks[folder.ParticipantID])
	assert.Equal(t, 1010, stacks[hist.Winners[0].ParticipantID])

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.HandsPlayed)
	assert.Equal(t, h.Seats[h.DealerPosition].SeatNumber, got.ButtonSeat)

	history, err := s.ListHistory(ctx, tour.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, hist.Winners, history[0].Winners)
}

func TestHand_ConcludeEliminatesBustedSeats(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindSitAndGo, domain.StatusRunning, 6, 0)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	_, err = s.AddBots(ctx, tour.ID, bots[:2], 1500, domain.StatusRunning)
	require.NoError(t, err)

	h := seatHand(t, s, tour)
	loser, winner := h.Seats[0], h.Seats[1]
	loser.Stack, winner.Stack = 0, 3000
	h.Pot = 0
	h.Concluded = true
	h.Phase = domain.PhaseShowdown
	h.Winners = []domain.Winner{{ParticipantID: winner.ParticipantID, Amount: 3000, HandRank: "Flush"}}

	hist, err := s.ConcludeHand(ctx, h)
	require.NoError(t, err)
	assert.Equal(t, 3000, hist.Pot)

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SeatCount)

	p, err := s.GetParticipant(ctx, tour.ID, loser.ParticipantID)
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipantEliminated, p.Status)
}

func TestFinishTournament_CashOutAndPrize(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	cash := newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 400)
	alice := newUser(t, s, 1000)
	_, err := s.RegisterHuman(ctx, cash.ID, alice, now)
	require.NoError(t, err)

	settled, err := s.FinishTournament(ctx, cash.ID, now)
	require.NoError(t, err)
	require.NotNil(t, settled)
	assert.Equal(t, 400, settled.Payouts[alice])
	u, err := s.GetUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1000, u.Balance)

	again, err := s.FinishTournament(ctx, cash.ID, now)
	require.NoError(t, err)
	assert.Nil(t, again, "settles once")

	sng := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 2, 100)
	bob := newUser(t, s, 1000)
	_, err = s.RegisterHuman(ctx, sng.ID, bob, now)
	require.NoError(t, err)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	added, err := s.AddBots(ctx, sng.ID, bots[:1], 1500)
	require.NoError(t, err)
	require.NoError(t, s.db.Exec("UPDATE participants SET stack = 0, status = 'eliminated' WHERE id = ?", added[0].ID).Error)

	settled, err = s.FinishTournament(ctx, sng.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 100, settled.Payouts[bob])
	u, err = s.GetUser(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1000, u.Balance)

	got, err := s.GetTournament(ctx, sng.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, got.Status)
	assert.NotNil(t, got.FinishedAt)
}

func TestPurgeTournament_RemovesEverything(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 0)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	_, err = s.AddBots(ctx, tour.ID, bots[:2], 1000)
	require.NoError(t, err)
	h := seatHand(t, s, tour)
	require.NoError(t, s.CreateHand(ctx, h))

	past := time.Now().UTC().Add(-48 * time.Hour)
	_, err = s.FinishTournament(ctx, tour.ID, past)
	require.NoError(t, err)

	old, err := s.ListFinishedBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, old, 1)

	require.NoError(t, s.PurgeTournament(ctx, tour.ID))
	_, err = s.GetTournament(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	ps, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestLocker_ExclusiveAndReclaimedAfterTTL(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }

	a, b := NewLocker(s.db), NewLocker(s.db)
	a.now, b.now = clock, clock

	ok, err := a.Acquire(ctx, "tick-runner", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, "tick-runner", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, a.Extend(ctx, "tick-runner", time.Minute))
	assert.Error(t, b.Extend(ctx, "tick-runner", time.Minute))

	now = now.Add(2 * time.Minute)
	ok, err = b.Acquire(ctx, "tick-runner", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired holder is treated as absent")

	require.NoError(t, a.Release(ctx, "tick-runner"))
	require.NoError(t, a.Release(ctx, "tick-runner"))
	ok, err = a.Acquire(ctx, "tick-runner", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocker_ConcurrentAcquireHasOneWinner(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := NewLocker(s.db).Acquire(ctx, "race", time.Minute)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestHand_ListAndDeleteLeaveStacksAlone(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindCash, domain.StatusRunning, 6, 0)
	bots, err := s.ListBots(ctx)
	require.NoError(t, err)
	_, err = s.AddBots(ctx, tour.ID, bots[:2], 1000)
	require.NoError(t, err)

	h := seatHand(t, s, tour)
	require.NoError(t, s.CreateHand(ctx, h))

	hands, err := s.ListHands(ctx)
	require.NoError(t, err)
	require.Len(t, hands, 1)
	assert.Equal(t, tour.ID, hands[0].TournamentID)

	assert.ErrorIs(t, s.DeleteHand(ctx, tour.ID, 7), ErrVersionConflict)
	require.NoError(t, s.DeleteHand(ctx, tour.ID, h.Version))

	_, err = s.GetHand(ctx, tour.ID)
	assert.ErrorIs(t, err, ErrHandNotFound)
	participants, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	for _, p := range participants {
		assert.Equal(t, 1000, p.Stack, "blinds posted in a voided hand are not charged")
	}
}

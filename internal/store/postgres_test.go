package store

import (
	"context"
	"errors"
	"os/exec"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"poker-platform/internal/currency"
	"poker-platform/internal/db"
	domain "poker-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// setupPostgresStore runs the store against a real PostgreSQL container.
// Skips the test if Docker is not available.
func setupPostgresStore(t *testing.T) *Store {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("poker"),
		postgres.WithUsername("poker"),
		postgres.WithPassword("poker"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.New(db.Config{Driver: db.DriverPostgres, DSN: connStr})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return New(gdb, currency.NewService(gdb))
}

func TestPostgres_ConcurrentRegistrationNeverOverfills(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()
	tour := newTournament(t, s, domain.KindSitAndGo, domain.StatusRegistering, 4, 100)

	users := make([]string, 10)
	for i := range users {
		users[i] = newUser(t, s, 1000)
	}

	var seated, full atomic.Int32
	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := s.RegisterHuman(ctx, tour.ID, userID, time.Now())
			switch {
			case err == nil:
				seated.Add(1)
			case errors.Is(err, ErrTournamentFull):
				full.Add(1)
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, int32(4), seated.Load())
	assert.Equal(t, int32(6), full.Load())

	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatCount)

	ps, err := s.ListParticipants(ctx, tour.ID)
	require.NoError(t, err)
	seats := map[int]bool{}
	for _, p := range ps {
		seats[p.SeatNumber] = true
	}
	assert.Len(t, seats, 4, "every participant has its own seat")
}

func TestPostgres_LockerHasOneWinner(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := NewLocker(s.db).Acquire(ctx, "tick-runner", time.Minute)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

package locks

import (
	"context"
	"os/exec"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func checkDockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

// setupRedis starts a throwaway Redis container, skipping without Docker.
func setupRedis(t *testing.T) *redis.Client {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	a, b := NewRedisLocker(client), NewRedisLocker(client)

	ok, err := a.Acquire(ctx, TickRunnerKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx, TickRunnerKey, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	holder, ttl, err := b.Holder(ctx, TickRunnerKey)
	require.NoError(t, err)
	assert.Contains(t, holder, a.instanceID)
	assert.Greater(t, ttl, time.Duration(0))

	assert.ErrorIs(t, b.Extend(ctx, TickRunnerKey, time.Minute), ErrLockNotHeld)
	assert.NoError(t, a.Extend(ctx, TickRunnerKey, time.Minute))

	require.NoError(t, b.Release(ctx, TickRunnerKey))
	require.NoError(t, b.Release(ctx, TickRunnerKey), "release is idempotent")

	ok, err = b.Acquire(ctx, TickRunnerKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_ExpiredHolderIsReclaimed(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	locker := NewRedisLocker(client)

	ok, err := locker.Acquire(ctx, "short", 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		ok, err := NewRedisLocker(client).Acquire(ctx, "short", time.Minute)
		return err == nil && ok
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRedisLocker_ConcurrentAcquireHasOneWinner(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := NewRedisLocker(client).Acquire(ctx, "race", time.Minute)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

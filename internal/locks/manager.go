package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	// ErrLockNotHeld occurs when extending a lock this instance does not hold
	ErrLockNotHeld = errors.New("lock not held by this instance")
)

const (
	// DefaultLockTTL is the default time-to-live for locks
	DefaultLockTTL = 30 * time.Second
	// TickRunnerKey names the lock that serializes ticks.
	TickRunnerKey = "tick-runner"
)

// Locker is a named execution lock. Acquire succeeds only when no live
// holder exists and never blocks; Release is unconditional and idempotent.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisLocker implements Locker with SET NX PX, so the check-and-set is a
// single Redis command and expiry is handled by the server.
type RedisLocker struct {
	redis      *redis.Client
	instanceID string
}

// NewRedisLocker creates a Redis-backed lock
func NewRedisLocker(redisClient *redis.Client) *RedisLocker {
	return &RedisLocker{
		redis:      redisClient,
		instanceID: uuid.New().String(),
	}
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// Acquire attempts to take key for ttl.
func (rl *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	k := lockKey(key)
	value := fmt.Sprintf("%s:%d", rl.instanceID, time.Now().UnixMilli())

	acquired, err := rl.redis.SetNX(ctx, k, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error acquiring %s: %w", k, err)
	}
	log.Debug().Str("component", "lock").Str("key", k).Bool("acquired", acquired).Msg("acquire")
	return acquired, nil
}

// Release deletes key whoever holds it.
func (rl *RedisLocker) Release(ctx context.Context, key string) error {
	k := lockKey(key)
	if err := rl.redis.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", k, err)
	}
	log.Debug().Str("component", "lock").Str("key", k).Msg("released")
	return nil
}

// Extend pushes the expiry of a lock this instance holds.
func (rl *RedisLocker) Extend(ctx context.Context, key string, ttl time.Duration) error {
	script := redis.NewScript(`
		local v = redis.call("get", KEYS[1])
		if v and string.sub(v, 1, string.len(ARGV[1])) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, rl.redis, []string{lockKey(key)}, rl.instanceID, ttl.Milliseconds()).Result()
	if err != nil {
		return fmt.Errorf("failed to extend lock: %w", err)
	}
	if result == int64(0) {
		return ErrLockNotHeld
	}
	return nil
}

// Holder returns the current holder token and remaining TTL of key.
func (rl *RedisLocker) Holder(ctx context.Context, key string) (holder string, ttl time.Duration, err error) {
	k := lockKey(key)
	value, err := rl.redis.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to get lock: %w", err)
	}
	ttl, err = rl.redis.PTTL(ctx, k).Result()
	if err != nil {
		return value, 0, fmt.Errorf("failed to get lock TTL: %w", err)
	}
	return value, ttl, nil
}

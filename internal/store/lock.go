package store

import (
	"context"
	"fmt"
	"time"

	"poker-platform/internal/locks"
	"poker-platform/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Locker is the execution lock kept in the execution_locks table, for
// deployments without Redis. Each acquire is one conditional statement:
// an insert that does nothing on conflict, then an update that only
// matches an expired row.
type Locker struct {
	db         *gorm.DB
	instanceID string
	now        func() time.Time
}

var _ locks.Locker = (*Locker)(nil)

func NewLocker(db *gorm.DB) *Locker {
	return &Locker{db: db, instanceID: uuid.New().String(), now: time.Now}
}

func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = locks.DefaultLockTTL
	}
	now := l.now()
	holder := fmt.Sprintf("%s:%d", l.instanceID, now.UnixMilli())
	expires := now.Add(ttl).UnixMilli()

	res := l.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ExecutionLock{Key: key, Holder: holder, ExpiresAtMs: expires})
	if res.Error != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, res.Error)
	}
	acquired := res.RowsAffected == 1

	if !acquired {
		res = l.db.WithContext(ctx).Model(&models.ExecutionLock{}).
			Where("lock_key = ? AND expires_at_ms <= ?", key, now.UnixMilli()).
			Updates(map[string]interface{}{"holder": holder, "expires_at_ms": expires})
		if res.Error != nil {
			return false, fmt.Errorf("failed to take over lock %s: %w", key, res.Error)
		}
		acquired = res.RowsAffected == 1
	}

	log.Debug().Str("component", "lock").Str("key", key).Bool("acquired", acquired).Msg("acquire")
	return acquired, nil
}

// Release deletes the lock row whoever holds it.
func (l *Locker) Release(ctx context.Context, key string) error {
	if err := l.db.WithContext(ctx).Where("lock_key = ?", key).Delete(&models.ExecutionLock{}).Error; err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	log.Debug().Str("component", "lock").Str("key", key).Msg("released")
	return nil
}

// Extend pushes the expiry of a lock this instance holds.
func (l *Locker) Extend(ctx context.Context, key string, ttl time.Duration) error {
	res := l.db.WithContext(ctx).Model(&models.ExecutionLock{}).
		Where("lock_key = ? AND holder LIKE ?", key, l.instanceID+":%").
		Update("expires_at_ms", l.now().Add(ttl).UnixMilli())
	if res.Error != nil {
		return fmt.Errorf("failed to extend lock %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return locks.ErrLockNotHeld
	}
	return nil
}

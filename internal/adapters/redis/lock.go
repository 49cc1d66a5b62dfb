package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"

	"github.com/selivandex/news-relay/pkg/logger"

	"go.uber.org/zap"
)

// MergeLock serializes the read-modify-write merge sequence for a single
// daily partition. Implementations may be distributed (Redis) or in-process.
type MergeLock interface {
	// Acquire blocks until the lock is held or ctx is done
	Acquire(ctx context.Context) error

	// Release releases the lock
	Release(ctx context.Context) error
}

// DistributedLock wraps redlock-go to serialize merges across pods
type DistributedLock struct {
	lockManager *redlock.RedLock
	lockName    string
	ttl         time.Duration
}

// NewDistributedLock creates a merge lock for one partition date key.
// The TTL must outlive the longest merge; the relay bounds merges well
// below it.
func NewDistributedLock(lockManager *redlock.RedLock, dateKey string) *DistributedLock {
	return &DistributedLock{
		lockManager: lockManager,
		lockName:    fmt.Sprintf("relay:merge:%s", dateKey),
		ttl:         2 * time.Minute,
	}
}

// Acquire polls the Redlock until it is granted or ctx expires
func (dl *DistributedLock) Acquire(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		expiry, err := dl.lockManager.Lock(ctx, dl.lockName, dl.ttl)
		if err == nil && expiry > 0 {
			logger.Debug("merge lock acquired",
				zap.String("lock_name", dl.lockName),
				zap.Duration("expiry", expiry),
			)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to acquire merge lock %s: %w", dl.lockName, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Release releases the Redis lock
func (dl *DistributedLock) Release(ctx context.Context) error {
	if err := dl.lockManager.UnLock(ctx, dl.lockName); err != nil {
		// Lock may have already expired naturally
		logger.Warn("failed to release merge lock",
			zap.String("lock_name", dl.lockName),
			zap.Error(err),
		)
	}
	return nil
}

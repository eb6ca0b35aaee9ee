package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker implements DistributedLocker with Redsync, the Redlock
// algorithm over a single Redis.
type RedisLocker struct {
	rs     *redsync.Redsync
	prefix string
	logger *zap.Logger

	mu      sync.Mutex
	mutexes map[string]*redsync.Mutex
}

// NewRedisLocker creates a Redis-based locker. Every key is stored under
// prefix so deployments sharing a Redis do not contend.
func NewRedisLocker(client *redis.Client, prefix string, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisLocker{
		rs:      redsync.New(goredis.NewPool(client)),
		prefix:  prefix,
		logger:  logger,
		mutexes: make(map[string]*redsync.Mutex),
	}
}

// Acquire tries once to take the lease for key.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mutex := r.rs.NewMutex(
		r.prefix+key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isTaken(err) {
			r.logger.Debug("lock held elsewhere", zap.String("key", key))

			return false, nil
		}

		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired",
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)

	return true, nil
}

// Release gives up the lease if this locker took it.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, ok := r.mutexes[key]
	delete(r.mutexes, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := mutex.UnlockContext(ctx)
	if err != nil && !isTaken(err) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if !released {
		r.logger.Debug("lock already expired or taken over", zap.String("key", key))
	}

	return nil
}

// isTaken reports lock contention. Redsync wraps it in several shapes
// depending on how many nodes answered.
func isTaken(err error) bool {
	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
		return true
	}

	return strings.Contains(err.Error(), "lock already taken")
}

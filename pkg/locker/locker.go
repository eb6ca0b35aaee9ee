// Package locker coordinates periodic work across service instances.
package locker

import (
	"context"
	"sync"
	"time"
)

// DistributedLocker grants a named lease to one holder at a time.
// Implementations must be safe for concurrent use.
//
// Typical usage:
//
//	acquired, err := l.Acquire(ctx, "warmer", 5*time.Minute)
//	if err != nil || !acquired {
//	    return
//	}
//	defer l.Release(ctx, "warmer")
type DistributedLocker interface {
	// Acquire tries once to take the lease for key. It returns false, without
	// an error, when someone else holds it. The lease expires after ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives up a lease taken by this locker. Releasing a lease that
	// was never taken, or already expired, is a no-op.
	Release(ctx context.Context, key string) error
}

// Local is an in-process DistributedLocker for single-instance deployments.
type Local struct {
	now func() time.Time

	mu     sync.Mutex
	leases map[string]time.Time
}

// NewLocal creates a Local locker.
func NewLocal() *Local {
	return &Local{
		now:    time.Now,
		leases: make(map[string]time.Time),
	}
}

// Acquire takes the lease for key if it is free or expired.
func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if until, held := l.leases[key]; held && now.Before(until) {
		return false, nil
	}
	l.leases[key] = now.Add(ttl)

	return true, nil
}

// Release frees the lease for key.
func (l *Local) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.leases, key)

	return nil
}

// Package store provides per-domain read-through caches with TTL, in-flight
// de-duplication and a fallback chain for failed fetches.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"classichub-service/internal/domain"
)

// State is the lifecycle state of a cache entry.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Outcomes reported to the Recorder.
const (
	OutcomeHit         = "hit"
	OutcomeJoin        = "join"
	OutcomeFetched     = "fetched"
	OutcomeSnapshotHit = "snapshot_hit"
	OutcomeError       = "error"
	OutcomeFallback    = "fallback"
	OutcomeCancelled   = "cancelled"
)

// FetchFunc loads the value for one key from upstream.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Recorder receives store outcomes, typically for metrics.
type Recorder interface {
	RecordStoreOutcome(store, outcome string)
}

// Snapshot is what a caller gets back from the store.
type Snapshot[T any] struct {
	Value     T
	State     State
	FetchedAt time.Time
	Err       error // last fetch error when State is StateError
	Stale     bool  // value is older than the TTL or kept from before a failed refresh
	Fallback  bool  // value is the store's static fallback
}

// Stats is a point-in-time view of store activity.
type Stats struct {
	Name      string `json:"name"`
	Entries   int    `json:"entries"`
	InFlight  int    `json:"in_flight"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Joins     uint64 `json:"joins"`
	Errors    uint64 `json:"errors"`
	Cancelled uint64 `json:"cancelled"`
}

// Options configures a Store.
type Options[T any] struct {
	Name string
	TTL  time.Duration // values never expire when TTL <= 0

	// Fallback returns the static value served when a fetch fails and the key
	// has never been loaded. May be nil.
	Fallback func(key string) (T, bool)

	// Cache is an optional shared snapshot tier. Ready values are written to
	// it as JSON and read back before calling upstream.
	Cache domain.Cache

	Recorder Recorder
	Logger   *zap.Logger
	Now      func() time.Time
}

type entry[T any] struct {
	value     T
	hasValue  bool
	fetchedAt time.Time
	state     State
	err       error
}

type call[T any] struct {
	done      chan struct{}
	cancel    context.CancelFunc
	waiters   int
	finished  bool
	abandoned bool
	prev      *entry[T] // entry as it was before the call started, nil if none

	snap Snapshot[T]
	err  error
}

// Store is a keyed read-through cache. It is safe for concurrent use.
type Store[T any] struct {
	name     string
	ttl      time.Duration
	fallback func(key string) (T, bool)
	cache    domain.Cache
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]*entry[T]
	calls   map[string]*call[T]
	stats   Stats
}

// New creates a Store.
func New[T any](opts Options[T]) *Store[T] {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store[T]{
		name:     opts.Name,
		ttl:      opts.TTL,
		fallback: opts.Fallback,
		cache:    opts.Cache,
		recorder: opts.Recorder,
		logger:   opts.Logger.With(zap.String("store", opts.Name)),
		now:      opts.Now,
		entries:  make(map[string]*entry[T]),
		calls:    make(map[string]*call[T]),
		stats:    Stats{Name: opts.Name},
	}
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.name
}

// FetchIfNeeded returns the value for key, calling fetch only when the key has
// no fresh ready value and no call for it is already in flight.
//
// A failed fetch is served from the previous value for the key, then from the
// static fallback; an error is returned only when neither exists or ctx ends
// before the result is available. When every waiter of a call has gone away
// the upstream call is cancelled and nothing is written.
func (s *Store[T]) FetchIfNeeded(ctx context.Context, key string, fetch FetchFunc[T]) (Snapshot[T], error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.state == StateReady && s.freshLocked(e) {
		s.stats.Hits++
		snap := s.snapshotLocked(e)
		s.mu.Unlock()
		s.record(OutcomeHit)

		return snap, nil
	}

	c, ok := s.calls[key]
	if ok {
		c.waiters++
		s.stats.Joins++
		s.mu.Unlock()
		s.record(OutcomeJoin)
	} else {
		s.stats.Misses++
		c = s.startLocked(ctx, key, fetch)
		s.mu.Unlock()
	}

	return s.wait(ctx, key, c)
}

// Peek returns the current entry for key without fetching.
func (s *Store[T]) Peek(key string) (Snapshot[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !e.hasValue {
		return Snapshot[T]{State: StateEmpty}, false
	}

	return s.snapshotLocked(e), true
}

// Invalidate drops the entry for key so the next access fetches again.
// An in-flight call for key is left alone.
func (s *Store[T]) Invalidate(ctx context.Context, key string) {
	s.mu.Lock()
	if _, inFlight := s.calls[key]; !inFlight {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.cacheKey(key)); err != nil {
			s.logger.Warn("snapshot delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Stats returns a copy of the store counters.
func (s *Store[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Entries = len(s.entries)
	st.InFlight = len(s.calls)

	return st
}

func (s *Store[T]) startLocked(ctx context.Context, key string, fetch FetchFunc[T]) *call[T] {
	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &call[T]{
		done:    make(chan struct{}),
		cancel:  cancel,
		waiters: 1,
	}

	e, ok := s.entries[key]
	if ok {
		prev := *e
		c.prev = &prev
	} else {
		e = &entry[T]{}
		s.entries[key] = e
	}
	e.state = StateLoading
	s.calls[key] = c

	go s.run(callCtx, key, c, fetch)

	return c
}

func (s *Store[T]) run(ctx context.Context, key string, c *call[T], fetch FetchFunc[T]) {
	defer c.cancel()

	value, fetchedAt, fromSnapshot, err := s.load(ctx, key, fetch)
	if !s.finish(key, c, value, fetchedAt, err) {
		return
	}

	if err == nil && !fromSnapshot && s.cache != nil {
		s.writeSnapshot(ctx, key, value, fetchedAt)
	}
}

func (s *Store[T]) load(ctx context.Context, key string, fetch FetchFunc[T]) (T, time.Time, bool, error) {
	if v, at, ok := s.readSnapshot(ctx, key); ok {
		s.record(OutcomeSnapshotHit)

		return v, at, true, nil
	}

	v, err := fetch(ctx)

	return v, s.now(), false, err
}

// finish records the result of a call. It reports false when the call was
// abandoned by all of its waiters.
func (s *Store[T]) finish(key string, c *call[T], value T, fetchedAt time.Time, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.finished = true
	defer close(c.done)

	if c.abandoned {
		c.err = context.Canceled

		return false
	}
	if s.calls[key] == c {
		delete(s.calls, key)
	}

	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{}
		s.entries[key] = e
	}

	if err == nil {
		e.value = value
		e.hasValue = true
		e.fetchedAt = fetchedAt
		e.state = StateReady
		e.err = nil
		c.snap = s.snapshotLocked(e)
		s.record(OutcomeFetched)

		return true
	}

	s.logger.Warn("fetch failed", zap.String("key", key), zap.Error(err))
	s.stats.Errors++
	e.state = StateError
	e.err = err
	s.record(OutcomeError)

	switch {
	case e.hasValue:
		c.snap = s.snapshotLocked(e)
		c.snap.Stale = true
	case s.fallback != nil:
		if fb, ok := s.fallback(key); ok {
			c.snap = Snapshot[T]{Value: fb, State: StateError, Err: err, Fallback: true}
			s.record(OutcomeFallback)

			break
		}
		c.err = fmt.Errorf("%s %q: %w: %w", s.name, key, domain.ErrUnavailable, err)
	default:
		c.err = fmt.Errorf("%s %q: %w: %w", s.name, key, domain.ErrUnavailable, err)
	}

	return true
}

func (s *Store[T]) wait(ctx context.Context, key string, c *call[T]) (Snapshot[T], error) {
	select {
	case <-c.done:
		return c.snap, c.err
	case <-ctx.Done():
	}

	s.mu.Lock()
	c.waiters--
	if c.waiters == 0 && !c.finished {
		c.abandoned = true
		if s.calls[key] == c {
			delete(s.calls, key)
		}
		s.restoreLocked(key, c)
		s.stats.Cancelled++
		c.cancel()
		s.record(OutcomeCancelled)
	}
	s.mu.Unlock()

	return Snapshot[T]{}, context.Cause(ctx)
}

// restoreLocked puts the entry back the way it was before an abandoned call.
func (s *Store[T]) restoreLocked(key string, c *call[T]) {
	if c.prev == nil {
		delete(s.entries, key)

		return
	}
	prev := *c.prev
	s.entries[key] = &prev
}

func (s *Store[T]) freshLocked(e *entry[T]) bool {
	return s.ttl <= 0 || s.now().Sub(e.fetchedAt) < s.ttl
}

func (s *Store[T]) snapshotLocked(e *entry[T]) Snapshot[T] {
	return Snapshot[T]{
		Value:     e.value,
		State:     e.state,
		FetchedAt: e.fetchedAt,
		Err:       e.err,
		Stale:     e.hasValue && !s.freshLocked(e),
	}
}

func (s *Store[T]) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordStoreOutcome(s.name, outcome)
	}
}

type snapshotEnvelope[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (s *Store[T]) cacheKey(key string) string {
	return s.name + ":" + key
}

func (s *Store[T]) readSnapshot(ctx context.Context, key string) (T, time.Time, bool) {
	var zero T
	if s.cache == nil {
		return zero, time.Time{}, false
	}

	data, err := s.cache.Get(ctx, s.cacheKey(key))
	if err != nil || data == nil {
		return zero, time.Time{}, false
	}

	var env snapshotEnvelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.Warn("snapshot decode failed", zap.String("key", key), zap.Error(err))

		return zero, time.Time{}, false
	}
	if s.ttl > 0 && s.now().Sub(env.FetchedAt) >= s.ttl {
		return zero, time.Time{}, false
	}

	return env.Value, env.FetchedAt, true
}

func (s *Store[T]) writeSnapshot(ctx context.Context, key string, value T, fetchedAt time.Time) {
	data, err := json.Marshal(snapshotEnvelope[T]{Value: value, FetchedAt: fetchedAt})
	if err != nil {
		s.logger.Warn("snapshot encode failed", zap.String("key", key), zap.Error(err))

		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := s.cache.Set(ctx, s.cacheKey(key), data, s.ttl); err != nil {
		s.logger.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
	}
}

// IsCancelled reports whether err means the caller stopped waiting.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrSuperseded)
}

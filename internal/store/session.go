package store

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a wait replaced by a newer query.
var ErrSuperseded = errors.New("superseded by a newer query")

// Session tracks one logical query session against a store, such as a
// paginated browser. Moving the session to a new key cancels every wait
// still pending on the previous key; if nobody else is waiting on that key
// its upstream call is cancelled too.
type Session[T any] struct {
	store *Store[T]

	mu    sync.Mutex
	key   string
	waits map[uint64]context.CancelCauseFunc
	next  uint64
}

// NewSession creates a session bound to st.
func NewSession[T any](st *Store[T]) *Session[T] {
	return &Session[T]{
		store: st,
		waits: make(map[uint64]context.CancelCauseFunc),
	}
}

// Fetch is FetchIfNeeded scoped to the session.
func (s *Session[T]) Fetch(ctx context.Context, key string, fetch FetchFunc[T]) (Snapshot[T], error) {
	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	if key != s.key {
		s.cancelAllLocked()
		s.key = key
	}
	id := s.next
	s.next++
	s.waits[id] = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.waits, id)
		s.mu.Unlock()
		cancel(nil)
	}()

	return s.store.FetchIfNeeded(ctx, key, fetch)
}

// Key returns the key the session currently points at.
func (s *Session[T]) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.key
}

// Close cancels every pending wait of the session.
func (s *Session[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()
}

func (s *Session[T]) cancelAllLocked() {
	for id, cancel := range s.waits {
		cancel(ErrSuperseded)
		delete(s.waits, id)
	}
}

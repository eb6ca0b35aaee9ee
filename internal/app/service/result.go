// Package service provides application use cases.
package service

import (
	"time"

	"classichub-service/internal/store"
)

// Warnings shown next to degraded data.
const (
	WarningFallback = "live data is unavailable, showing sample data"
	WarningStale    = "refresh failed, showing previously loaded data"
	WarningEmpty    = "live data is unavailable"
)

// Result is a store value plus what the caller needs to render it honestly.
type Result[T any] struct {
	Data      T
	State     store.State
	FetchedAt time.Time
	Stale     bool
	Fallback  bool
	Warning   string
}

func resultOf[T any](snap store.Snapshot[T], emptyFallback bool) Result[T] {
	r := Result[T]{
		Data:      snap.Value,
		State:     snap.State,
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale,
		Fallback:  snap.Fallback,
	}

	switch {
	case snap.Fallback && emptyFallback:
		r.Warning = WarningEmpty
	case snap.Fallback:
		r.Warning = WarningFallback
	case snap.State == store.StateError:
		r.Warning = WarningStale
	}

	return r
}

package domain

import "errors"

var (
	// ErrNotFound is returned when a provider has no record for the requested key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidResponse marks a payload that failed shape validation.
	ErrInvalidResponse = errors.New("invalid provider response")

	// ErrUnavailable is returned when nothing, not even a fallback, can be served.
	ErrUnavailable = errors.New("data unavailable")
)

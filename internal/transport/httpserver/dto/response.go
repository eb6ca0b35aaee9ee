package dto

import (
	"time"

	"classichub-service/internal/app/service"
	"classichub-service/internal/domain"
)

// Error codes.
const (
	CodeInvalidParams   = "INVALID_PARAMS"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidCategory = "INVALID_CATEGORY"
	CodeUnknownSource   = "UNKNOWN_SOURCE"
	CodeInvalidCheer    = "INVALID_CHEER"
	CodeUnavailable     = "UNAVAILABLE"
	CodeTimeout         = "TIMEOUT"
	CodeCancelled       = "CANCELLED"
	CodeInternal        = "INTERNAL_ERROR"
	CodePanic           = "PANIC"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// Envelope carries store data with its freshness. Warning is set whenever
// the data is not a fresh upstream answer.
type Envelope[T any] struct {
	Data       T               `json:"data"`
	State      string          `json:"state"`
	FetchedAt  *time.Time      `json:"fetched_at,omitempty"`
	Stale      bool            `json:"stale,omitempty"`
	Fallback   bool            `json:"fallback,omitempty"`
	Warning    string          `json:"warning,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta holds pagination metadata of an upstream page.
type PaginationMeta struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Count    int `json:"count"`
}

// FromResult wraps a service result.
func FromResult[T any](r service.Result[T]) Envelope[T] {
	env := Envelope[T]{
		Data:     r.Data,
		State:    string(r.State),
		Stale:    r.Stale,
		Fallback: r.Fallback,
		Warning:  r.Warning,
	}
	if !r.FetchedAt.IsZero() {
		at := r.FetchedAt.UTC()
		env.FetchedAt = &at
	}

	return env
}

// FromPerformancePage wraps a listing result with its paging.
func FromPerformancePage(r service.Result[[]*domain.Performance], q domain.PerformanceQuery) Envelope[[]*domain.Performance] {
	env := FromResult(r)
	if env.Data == nil {
		env.Data = []*domain.Performance{}
	}
	env.Pagination = &PaginationMeta{
		Page:     q.Page,
		PageSize: q.PageSize,
		Count:    len(env.Data),
	}

	return env
}

// ArtistDetailResponse is an artist with the local follow and cheer state.
type ArtistDetailResponse struct {
	Envelope[domain.Artist]
	Followed   bool                  `json:"followed"`
	Cheers     []domain.CheerMessage `json:"cheers"`
	CheerCount int                   `json:"cheer_count"`
}

// FollowResponse is the follow flag after a toggle.
type FollowResponse struct {
	ArtistID string `json:"artist_id"`
	Followed bool   `json:"followed"`
}

// FollowsResponse lists followed artist ids.
type FollowsResponse struct {
	ArtistIDs []string `json:"artist_ids"`
}

// CheersResponse lists the cheer messages of an artist, newest first.
type CheersResponse struct {
	ArtistID string                `json:"artist_id"`
	Cheers   []domain.CheerMessage `json:"cheers"`
}

// SourcesResponse lists the registered news sources.
type SourcesResponse struct {
	Sources []string `json:"sources"`
}

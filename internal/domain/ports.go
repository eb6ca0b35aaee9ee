package domain

import (
	"context"
	"time"
)

// PerformanceCatalog is the ticketing catalog provider.
// Implementations: internal/infra/provider/kopis
type PerformanceCatalog interface {
	// List runs a paginated listing query. Transport and shape failures are
	// returned as errors so the store can enter its error state.
	List(ctx context.Context, q PerformanceQuery) ([]*Performance, error)

	// Detail returns the enriched record for a catalog id, or nil when the
	// provider has no such record.
	Detail(ctx context.Context, id string) (*Performance, error)

	// Facility returns the coordinates of a venue, or nil when unknown.
	Facility(ctx context.Context, facilityID string) (*Coordinates, error)
}

// ArtistMetadataProvider searches artist metadata by free-text name.
// Implementations: internal/infra/provider/audiodb
type ArtistMetadataProvider interface {
	// SearchArtist returns the best match, or nil when nothing matched.
	SearchArtist(ctx context.Context, name string) (*ArtistMetadata, error)
}

// EncyclopediaProvider fetches page summaries by canonical title.
// Implementations: internal/infra/provider/wikipedia
type EncyclopediaProvider interface {
	// Summary returns nil when the page does not exist.
	Summary(ctx context.Context, title string) (*EncyclopediaSummary, error)
}

// ComposerProvider lists composers and their works.
// Implementations: internal/infra/provider/openopus
type ComposerProvider interface {
	PopularComposers(ctx context.Context) ([]Composer, error)
	Works(ctx context.Context, composerID string) ([]ComposerWork, error)
}

// VideoProvider searches videos.
// Implementations: internal/infra/provider/youtube
type VideoProvider interface {
	SearchVideos(ctx context.Context, query string, limit int) ([]Video, error)
}

// NewsProvider returns news articles for a query.
// Implementations: internal/infra/provider/naver, internal/infra/provider/rss
type NewsProvider interface {
	Name() string
	SearchNews(ctx context.Context, q NewsQuery) ([]NewsArticle, error)
}

// Cache defines the interface for the shared snapshot tier.
// Implementations: internal/infra/redis/cache.go
type Cache interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// Clear removes all cached values.
	Clear(ctx context.Context) error
}

// PreferenceRepository is the durable store for locally owned user state.
// Implementations: internal/infra/postgres/repository.go
type PreferenceRepository interface {
	// ListFollows returns the ids of every followed artist.
	ListFollows(ctx context.Context) ([]string, error)

	// SetFollow records or clears the follow flag for an artist.
	SetFollow(ctx context.Context, artistID string, followed bool) error

	// ListCheers returns all cheer messages, oldest first.
	ListCheers(ctx context.Context) ([]CheerMessage, error)

	// AddCheer stores a new cheer message.
	AddCheer(ctx context.Context, msg CheerMessage) error

	// DeleteCheer removes a cheer message by id.
	DeleteCheer(ctx context.Context, id string) error
}

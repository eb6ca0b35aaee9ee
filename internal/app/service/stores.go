package service

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/roster"
	"classichub-service/internal/store"
)

// StoreSettings holds the per-domain TTLs.
type StoreSettings struct {
	PerformanceTTL time.Duration
	DetailTTL      time.Duration
	FacilityTTL    time.Duration
	ArtistTTL      time.Duration
	ComposerTTL    time.Duration
	NewsTTL        time.Duration
	VideoTTL       time.Duration
}

// Stores owns every cache of the application. Build it once at startup and
// hand the individual stores to the services.
type Stores struct {
	Performances *store.Store[[]*domain.Performance]
	Details      *store.Store[*domain.Performance]
	Facilities   *store.Store[*domain.Coordinates]
	ArtistLists  *store.Store[[]domain.Artist]
	Artists      *store.Store[domain.Artist]
	Composers    *store.Store[[]domain.Composer]
	Works        *store.Store[[]domain.ComposerWork]
	News         *store.Store[[]domain.NewsArticle]
	Videos       *store.Store[[]domain.Video]
}

// Key prefix of the weekly composer lists in Stores.ArtistLists.
const weeklyKeyPrefix = "weekly:"

// NewStores creates the stores. cache and rec may be nil.
func NewStores(cfg StoreSettings, cache domain.Cache, rec store.Recorder, logger *zap.Logger, now func() time.Time) *Stores {
	if now == nil {
		now = time.Now
	}
	sh := shared{cache: cache, rec: rec, logger: logger, now: now}

	return &Stores{
		Performances: store.New(options(sh, "performances", cfg.PerformanceTTL,
			func(string) ([]*domain.Performance, bool) {
				return roster.SamplePerformances(now()), true
			})),
		Details:    store.New(options[*domain.Performance](sh, "performance_details", cfg.DetailTTL, nil)),
		Facilities: store.New(options[*domain.Coordinates](sh, "facilities", cfg.FacilityTTL, nil)),
		ArtistLists: store.New(options(sh, "artist_lists", cfg.ArtistTTL,
			func(key string) ([]domain.Artist, bool) {
				if strings.HasPrefix(key, weeklyKeyPrefix) {
					return roster.SampleArtists(domain.CategoryComposer), true
				}

				return roster.SampleArtists(domain.ArtistCategory(key)), true
			})),
		Artists:   store.New(options[domain.Artist](sh, "artists", cfg.ArtistTTL, nil)),
		Composers: store.New(options(sh, "composers", cfg.ComposerTTL, emptyFallback[domain.Composer])),
		Works:     store.New(options(sh, "composer_works", cfg.ComposerTTL, emptyFallback[domain.ComposerWork])),
		News:      store.New(options(sh, "news", cfg.NewsTTL, emptyFallback[domain.NewsArticle])),
		Videos:    store.New(options(sh, "videos", cfg.VideoTTL, emptyFallback[domain.Video])),
	}
}

type shared struct {
	cache  domain.Cache
	rec    store.Recorder
	logger *zap.Logger
	now    func() time.Time
}

func options[T any](sh shared, name string, ttl time.Duration, fallback func(string) (T, bool)) store.Options[T] {
	return store.Options[T]{
		Name:     name,
		TTL:      ttl,
		Fallback: fallback,
		Cache:    sh.cache,
		Recorder: sh.rec,
		Logger:   sh.logger,
		Now:      sh.now,
	}
}

// emptyFallback serves an empty list for lists that have no sample data.
func emptyFallback[T any](string) ([]T, bool) {
	return []T{}, true
}

// Stats returns the counters of every store.
func (s *Stores) Stats() []store.Stats {
	return []store.Stats{
		s.Performances.Stats(),
		s.Details.Stats(),
		s.Facilities.Stats(),
		s.ArtistLists.Stats(),
		s.Artists.Stats(),
		s.Composers.Stats(),
		s.Works.Stats(),
		s.News.Stats(),
		s.Videos.Stats(),
	}
}

// Package assembly builds composite records out of several independent
// provider calls.
package assembly

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classichub-service/internal/domain"
	"classichub-service/internal/store"
)

const defaultConcurrency = 4

// Options configures an Assembler. Any provider may be nil, in which case its
// contribution is always absent.
type Options struct {
	Metadata     domain.ArtistMetadataProvider
	Encyclopedia domain.EncyclopediaProvider
	Catalog      domain.PerformanceCatalog

	// Details caches catalog detail records by performance id.
	Details *store.Store[*domain.Performance]
	// Facilities caches venue coordinates by facility id.
	Facilities *store.Store[*domain.Coordinates]

	Concurrency int
	Logger      *zap.Logger
}

// Assembler merges artist and performance records from their sources.
type Assembler struct {
	metadata     domain.ArtistMetadataProvider
	encyclopedia domain.EncyclopediaProvider
	catalog      domain.PerformanceCatalog
	details      *store.Store[*domain.Performance]
	facilities   *store.Store[*domain.Coordinates]
	limit        int
	logger       *zap.Logger
}

// New creates an Assembler.
func New(opts Options) *Assembler {
	if opts.Concurrency < 1 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Assembler{
		metadata:     opts.Metadata,
		encyclopedia: opts.Encyclopedia,
		catalog:      opts.Catalog,
		details:      opts.Details,
		facilities:   opts.Facilities,
		limit:        opts.Concurrency,
		logger:       opts.Logger,
	}
}

// BatchResult is the outcome of AssembleArtistBatch.
type BatchResult struct {
	Artists []domain.Artist
	// Contributed counts entries that got data from at least one provider.
	Contributed int
}

// AssembleArtist queries the metadata and encyclopedia providers concurrently
// and merges whatever came back over the static roster fields. It never
// fails; the bool reports whether any provider contributed.
func (a *Assembler) AssembleArtist(ctx context.Context, entry domain.RosterEntry) (domain.Artist, bool) {
	var (
		wg   sync.WaitGroup
		meta *domain.ArtistMetadata
		wiki *domain.EncyclopediaSummary
	)

	if a.metadata != nil && entry.SearchName != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := a.metadata.SearchArtist(ctx, entry.SearchName)
			if err != nil {
				a.logger.Warn("artist metadata lookup failed",
					zap.String("artist_id", entry.ID),
					zap.String("name", entry.SearchName),
					zap.Error(err),
				)

				return
			}
			meta = m
		}()
	}

	if a.encyclopedia != nil && entry.WikiTitle != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := a.encyclopedia.Summary(ctx, entry.WikiTitle)
			if err != nil {
				a.logger.Warn("encyclopedia lookup failed",
					zap.String("artist_id", entry.ID),
					zap.String("title", entry.WikiTitle),
					zap.Error(err),
				)

				return
			}
			wiki = w
		}()
	}

	wg.Wait()

	return domain.MergeArtist(entry, meta, wiki), meta != nil || wiki != nil
}

// AssembleArtistBatch assembles every entry with bounded concurrency. The
// result always has one record per entry, in input order.
func (a *Assembler) AssembleArtistBatch(ctx context.Context, entries []domain.RosterEntry) BatchResult {
	artists := make([]domain.Artist, len(entries))
	contributed := make([]bool, len(entries))

	var g errgroup.Group
	g.SetLimit(a.limit)
	for i, e := range entries {
		g.Go(func() error {
			artists[i], contributed[i] = a.AssembleArtist(ctx, e)

			return nil
		})
	}
	_ = g.Wait()

	result := BatchResult{Artists: artists}
	for _, ok := range contributed {
		if ok {
			result.Contributed++
		}
	}

	a.logger.Debug("artist batch assembled",
		zap.Int("entries", len(entries)),
		zap.Int("contributed", result.Contributed),
	)

	return result
}

// EnrichPerformanceLocation returns a copy of p with coordinates filled in.
// Known coordinates short-circuit; a missing facility id is resolved through
// the cached detail record; coordinates come from the facility cache so a
// venue is looked up once no matter how many performances share it. Lookup
// failures leave the copy without coordinates.
func (a *Assembler) EnrichPerformanceLocation(ctx context.Context, p *domain.Performance) *domain.Performance {
	if p == nil || p.HasLocation() {
		return p
	}
	out := p.Clone()

	if out.FacilityID == "" {
		detail := a.Detail(ctx, out.ID)
		out.Merge(detail)
		if out.HasLocation() || out.FacilityID == "" {
			return out
		}
	}

	if loc := a.Facility(ctx, out.FacilityID); loc != nil {
		c := *loc
		out.Location = &c
	}

	return out
}

// EnrichPerformanceLocations enriches a whole page with bounded concurrency.
// Order is preserved.
func (a *Assembler) EnrichPerformanceLocations(ctx context.Context, perfs []*domain.Performance) []*domain.Performance {
	out := make([]*domain.Performance, len(perfs))

	var g errgroup.Group
	g.SetLimit(a.limit)
	for i, p := range perfs {
		g.Go(func() error {
			out[i] = a.EnrichPerformanceLocation(ctx, p)

			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Detail returns the cached detail record for a performance id, or nil.
func (a *Assembler) Detail(ctx context.Context, id string) *domain.Performance {
	detail, err := a.LookupDetail(ctx, id)
	if err != nil {
		a.logger.Debug("performance detail unavailable", zap.String("performance_id", id), zap.Error(err))

		return nil
	}

	return detail
}

// LookupDetail is Detail with the failure kept: domain.ErrNotFound when the
// catalog has no such record, the store error when the catalog is unreachable.
func (a *Assembler) LookupDetail(ctx context.Context, id string) (*domain.Performance, error) {
	if a.details == nil || a.catalog == nil || id == "" {
		return nil, fmt.Errorf("performance %s: %w", id, domain.ErrNotFound)
	}

	snap, err := a.details.FetchIfNeeded(ctx, id, func(ctx context.Context) (*domain.Performance, error) {
		return a.catalog.Detail(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if snap.Value == nil {
		return nil, fmt.Errorf("performance %s: %w", id, domain.ErrNotFound)
	}

	return snap.Value, nil
}

// Facility returns the cached coordinates of a venue, or nil.
func (a *Assembler) Facility(ctx context.Context, facilityID string) *domain.Coordinates {
	if a.facilities == nil || a.catalog == nil || facilityID == "" {
		return nil
	}

	snap, err := a.facilities.FetchIfNeeded(ctx, facilityID, func(ctx context.Context) (*domain.Coordinates, error) {
		return a.catalog.Facility(ctx, facilityID)
	})
	if err != nil {
		a.logger.Debug("facility coordinates unavailable", zap.String("facility_id", facilityID), zap.Error(err))

		return nil
	}

	return snap.Value
}

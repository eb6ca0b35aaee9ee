package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"classichub-service/internal/app/assembly"
	"classichub-service/internal/domain"
	"classichub-service/internal/store"
)

// PerformanceService serves the ticketing catalog through its stores.
type PerformanceService struct {
	catalog   domain.PerformanceCatalog
	lists     *store.Store[[]*domain.Performance]
	assembler *assembly.Assembler
	now       func() time.Time
	logger    *zap.Logger
}

// NewPerformanceService creates a new PerformanceService.
func NewPerformanceService(
	catalog domain.PerformanceCatalog,
	lists *store.Store[[]*domain.Performance],
	assembler *assembly.Assembler,
	now func() time.Time,
	logger *zap.Logger,
) *PerformanceService {
	if now == nil {
		now = time.Now
	}

	return &PerformanceService{
		catalog:   catalog,
		lists:     lists,
		assembler: assembler,
		now:       now,
		logger:    logger,
	}
}

// List fetches the page addressed by q if needed and applies the client-side
// filter to it. The filter never causes an upstream call.
func (s *PerformanceService) List(ctx context.Context, q domain.PerformanceQuery, f domain.PerformanceFilter) (Result[[]*domain.Performance], error) {
	q.Normalize(s.now())

	snap, err := s.lists.FetchIfNeeded(ctx, q.Key(), s.listFetcher(q))
	if err != nil {
		return Result[[]*domain.Performance]{}, err
	}

	return s.page(snap, f), nil
}

func (s *PerformanceService) listFetcher(q domain.PerformanceQuery) store.FetchFunc[[]*domain.Performance] {
	return func(ctx context.Context) ([]*domain.Performance, error) {
		s.logger.Debug("fetching performances",
			zap.String("key", q.Key()),
			zap.String("genre", q.Genre),
			zap.Int("page", q.Page),
		)

		return s.catalog.List(ctx, q)
	}
}

func (s *PerformanceService) page(snap store.Snapshot[[]*domain.Performance], f domain.PerformanceFilter) Result[[]*domain.Performance] {
	r := resultOf(snap, false)
	items := f.Apply(snap.Value)
	for i, p := range items {
		items[i] = p.Clone()
	}
	r.Data = items

	return r
}

// Detail returns the enriched record for id, coordinates included when the
// venue is known. domain.ErrNotFound is returned for unknown ids and
// domain.ErrUnavailable when the catalog cannot be reached.
func (s *PerformanceService) Detail(ctx context.Context, id string) (*domain.Performance, error) {
	detail, err := s.assembler.LookupDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.assembler.EnrichPerformanceLocation(ctx, detail.Clone()), nil
}

// Location resolves only the coordinates of a performance.
func (s *PerformanceService) Location(ctx context.Context, id string) (*domain.Coordinates, error) {
	p, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Location == nil {
		return nil, fmt.Errorf("location of performance %s: %w", id, domain.ErrNotFound)
	}

	return p.Location, nil
}

// WithLocations enriches a page for map views. Venues shared by several
// performances are looked up once.
func (s *PerformanceService) WithLocations(ctx context.Context, perfs []*domain.Performance) []*domain.Performance {
	return s.assembler.EnrichPerformanceLocations(ctx, perfs)
}

// Warm loads the default listing.
func (s *PerformanceService) Warm(ctx context.Context) error {
	_, err := s.List(ctx, domain.PerformanceQuery{}, domain.PerformanceFilter{})

	return err
}

// PerformanceBrowser is one client's query session over the listing. Setters
// of upstream parameters reset the page to 1 and move the session to a new
// key, cancelling the wait on the previous one. Client-side setters
// (SetSearchText, SetRegion, SetSort) keep the key and the current page and
// never refetch; they only narrow or reorder the page already fetched.
type PerformanceBrowser struct {
	svc     *PerformanceService
	session *store.Session[[]*domain.Performance]

	mu     sync.Mutex
	query  domain.PerformanceQuery
	filter domain.PerformanceFilter
}

// NewBrowser starts a browsing session on the default query.
func (s *PerformanceService) NewBrowser() *PerformanceBrowser {
	b := &PerformanceBrowser{
		svc:     s,
		session: store.NewSession(s.lists),
	}
	b.query.Normalize(s.now())

	return b
}

// SetGenre changes the upstream genre.
func (b *PerformanceBrowser) SetGenre(genre string) {
	b.update(func(q *domain.PerformanceQuery) { q.Genre = genre })
}

// SetStatus changes the upstream status filter. Empty means any.
func (b *PerformanceBrowser) SetStatus(status domain.PerformanceStatus) {
	b.update(func(q *domain.PerformanceQuery) { q.Status = status })
}

// SetDateRange changes the upstream date window.
func (b *PerformanceBrowser) SetDateRange(from, to time.Time) {
	b.update(func(q *domain.PerformanceQuery) {
		q.From = from
		q.To = to
	})
}

// SetPageSize changes the upstream page size.
func (b *PerformanceBrowser) SetPageSize(n int) {
	b.update(func(q *domain.PerformanceQuery) { q.PageSize = n })
}

// SetPage moves to page n without touching the other parameters.
func (b *PerformanceBrowser) SetPage(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query.Page = n
	b.query.Normalize(b.svc.now())
}

// SetSearchText filters the fetched page by title, venue and cast.
func (b *PerformanceBrowser) SetSearchText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Text = text
}

// SetRegion filters the fetched page by region.
func (b *PerformanceBrowser) SetRegion(region string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Region = region
}

// SetSort orders the fetched page.
func (b *PerformanceBrowser) SetSort(field domain.SortField, order domain.SortOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.SortBy = field
	b.filter.SortOrder = order
}

// Query returns the current upstream query.
func (b *PerformanceBrowser) Query() domain.PerformanceQuery {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.query
}

// Filter returns the current client-side filter.
func (b *PerformanceBrowser) Filter() domain.PerformanceFilter {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.filter
}

// Current fetches (if needed) and returns the page for the current state.
func (b *PerformanceBrowser) Current(ctx context.Context) (Result[[]*domain.Performance], error) {
	b.mu.Lock()
	q, f := b.query, b.filter
	b.mu.Unlock()

	snap, err := b.session.Fetch(ctx, q.Key(), b.svc.listFetcher(q))
	if err != nil {
		return Result[[]*domain.Performance]{}, err
	}

	return b.svc.page(snap, f), nil
}

// Refresh drops the cached page for the current state and fetches it again.
func (b *PerformanceBrowser) Refresh(ctx context.Context) (Result[[]*domain.Performance], error) {
	b.mu.Lock()
	key := b.query.Key()
	b.mu.Unlock()

	b.svc.lists.Invalidate(ctx, key)

	return b.Current(ctx)
}

// Close cancels any wait still pending in this session.
func (b *PerformanceBrowser) Close() {
	b.session.Close()
}

func (b *PerformanceBrowser) update(apply func(q *domain.PerformanceQuery)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	apply(&b.query)
	b.query.Page = 1
	b.query.Normalize(b.svc.now())
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classichub-service/internal/app/assembly"
	"classichub-service/internal/domain"
	"classichub-service/internal/store"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type stubCatalog struct {
	mu        sync.Mutex
	pages     map[int][]*domain.Performance
	details   map[string]*domain.Performance
	listErr   error
	detailErr error
	listCalls []domain.PerformanceQuery
	block     chan struct{}
}

func (s *stubCatalog) List(ctx context.Context, q domain.PerformanceQuery) ([]*domain.Performance, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, q)
	block, err, page := s.block, s.listErr, s.pages[q.Page]
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (s *stubCatalog) Detail(_ context.Context, id string) (*domain.Performance, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}

	return s.details[id], nil
}

func (s *stubCatalog) Facility(context.Context, string) (*domain.Coordinates, error) {
	return &domain.Coordinates{Lat: 37.47, Lng: 127.01}, nil
}

func (s *stubCatalog) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.listCalls)
}

func testPerformances() []*domain.Performance {
	now := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)

	return []*domain.Performance{
		domain.NewPerformance("PF1", "Mahler 5", "Lotte Concert Hall", now.AddDate(0, 0, 3), now.AddDate(0, 0, 3), "", now),
		domain.NewPerformance("PF2", "Bach Cello Suites", "Seoul Arts Center", now.AddDate(0, 0, 1), now.AddDate(0, 0, 2), "", now),
	}
}

func newPerformanceFixture(t *testing.T, catalog *stubCatalog) (*PerformanceService, *Stores, *clock) {
	t.Helper()

	clk := newClock()
	stores := NewStores(StoreSettings{
		PerformanceTTL: 5 * time.Minute,
		DetailTTL:      time.Hour,
		FacilityTTL:    time.Hour,
	}, nil, nil, zap.NewNop(), clk.Now)
	asm := assembly.New(assembly.Options{
		Catalog:    catalog,
		Details:    stores.Details,
		Facilities: stores.Facilities,
	})

	return NewPerformanceService(catalog, stores.Performances, asm, clk.Now, zap.NewNop()), stores, clk
}

func TestPerformanceService_List_FetchesOnce(t *testing.T) {
	catalog := &stubCatalog{pages: map[int][]*domain.Performance{1: testPerformances()}}
	svc, _, _ := newPerformanceFixture(t, catalog)

	first, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})
	require.NoError(t, err)
	second, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.calls())
	assert.Len(t, first.Data, 2)
	assert.Equal(t, store.StateReady, second.State)
	assert.Empty(t, second.Warning)
}

func TestPerformanceService_List_ClientFilterDoesNotRefetch(t *testing.T) {
	catalog := &stubCatalog{pages: map[int][]*domain.Performance{1: testPerformances()}}
	svc, _, _ := newPerformanceFixture(t, catalog)

	_, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})
	require.NoError(t, err)

	res, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{
		Text:   "bach",
		SortBy: domain.SortByStartDate,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, catalog.calls())
	require.Len(t, res.Data, 1)
	assert.Equal(t, "PF2", res.Data[0].ID)
}

func TestPerformanceService_List_ReturnsCopies(t *testing.T) {
	catalog := &stubCatalog{pages: map[int][]*domain.Performance{1: testPerformances()}}
	svc, _, _ := newPerformanceFixture(t, catalog)

	res, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})
	require.NoError(t, err)
	res.Data[0].Title = "mutated"

	again, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Mahler 5", again.Data[0].Title)
}

func TestPerformanceService_List_FallsBackToSamples(t *testing.T) {
	catalog := &stubCatalog{listErr: errors.New("catalog down")}
	svc, _, _ := newPerformanceFixture(t, catalog)

	res, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})

	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, WarningFallback, res.Warning)
	assert.Equal(t, store.StateError, res.State)
	assert.NotEmpty(t, res.Data)
}

func TestPerformanceService_List_KeepsPreviousValueOnRefreshFailure(t *testing.T) {
	catalog := &stubCatalog{pages: map[int][]*domain.Performance{1: testPerformances()}}
	svc, _, clk := newPerformanceFixture(t, catalog)

	_, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)
	catalog.mu.Lock()
	catalog.listErr = errors.New("catalog down")
	catalog.mu.Unlock()

	res, err := svc.List(context.Background(), domain.PerformanceQuery{}, domain.PerformanceFilter{})

	require.NoError(t, err)
	assert.Equal(t, 2, catalog.calls())
	assert.True(t, res.Stale)
	assert.False(t, res.Fallback)
	assert.Equal(t, WarningStale, res.Warning)
	assert.Len(t, res.Data, 2)
}

func TestPerformanceService_Detail(t *testing.T) {
	catalog := &stubCatalog{details: map[string]*domain.Performance{
		"PF1": {ID: "PF1", Title: "Mahler 5", FacilityID: "FC1", Cast: "Seoul Philharmonic"},
	}}
	svc, _, _ := newPerformanceFixture(t, catalog)

	p, err := svc.Detail(context.Background(), "PF1")
	require.NoError(t, err)
	assert.Equal(t, "Seoul Philharmonic", p.Cast)
	require.NotNil(t, p.Location)
	assert.Equal(t, 37.47, p.Location.Lat)

	loc, err := svc.Location(context.Background(), "PF1")
	require.NoError(t, err)
	assert.Equal(t, 127.01, loc.Lng)

	_, err = svc.Detail(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPerformanceService_Detail_UpstreamFailureIsUnavailable(t *testing.T) {
	catalog := &stubCatalog{detailErr: errors.New("kopis: 502 bad gateway")}
	svc, _, _ := newPerformanceFixture(t, catalog)

	_, err := svc.Detail(context.Background(), "PF1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.False(t, errors.Is(err, domain.ErrNotFound), "an unreachable catalog is not a missing record")

	_, err = svc.Location(context.Background(), "PF1")
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestPerformanceBrowser_SettersResetPage(t *testing.T) {
	catalog := &stubCatalog{}
	svc, _, _ := newPerformanceFixture(t, catalog)

	b := svc.NewBrowser()
	defer b.Close()

	b.SetPage(3)
	assert.Equal(t, 3, b.Query().Page)

	b.SetGenre(domain.GenreKorean)
	assert.Equal(t, 1, b.Query().Page)
	assert.Equal(t, domain.GenreKorean, b.Query().Genre)

	b.SetPage(2)
	b.SetStatus(domain.StatusRunning)
	assert.Equal(t, 1, b.Query().Page)

	b.SetPage(2)
	b.SetPageSize(50)
	assert.Equal(t, 1, b.Query().Page)
	assert.Equal(t, 50, b.Query().PageSize)

	b.SetPage(4)
	keyBefore := b.Query().Key()
	b.SetSearchText("bach")
	b.SetRegion("서울")
	b.SetSort(domain.SortByTitle, domain.SortOrderDesc)
	assert.Equal(t, keyBefore, b.Query().Key(), "client-side setters keep the upstream key")
	assert.Equal(t, 4, b.Query().Page)
	assert.Equal(t, "bach", b.Filter().Text)
}

func TestPerformanceBrowser_CurrentAppliesFilter(t *testing.T) {
	catalog := &stubCatalog{pages: map[int][]*domain.Performance{
		1: testPerformances(),
		2: {{ID: "PF3", Title: "Page two"}},
	}}
	svc, _, _ := newPerformanceFixture(t, catalog)

	b := svc.NewBrowser()
	defer b.Close()

	b.SetSearchText("mahler")
	res, err := b.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "PF1", res.Data[0].ID)

	b.SetPage(2)
	b.SetSearchText("")
	res, err = b.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "PF3", res.Data[0].ID)

	assert.Equal(t, 2, catalog.calls())
}

func TestPerformanceBrowser_SupersededQueryIsCancelled(t *testing.T) {
	catalog := &stubCatalog{block: make(chan struct{})}
	svc, stores, _ := newPerformanceFixture(t, catalog)

	b := svc.NewBrowser()
	defer b.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := b.Current(context.Background())
		errCh <- err
	}()

	require.Eventually(t, func() bool { return catalog.calls() == 1 }, time.Second, 5*time.Millisecond)

	b.SetGenre(domain.GenreKorean)
	catalog.mu.Lock()
	catalog.block = nil
	catalog.mu.Unlock()

	_, err := b.Current(context.Background())
	require.NoError(t, err)

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, store.ErrSuperseded))
	case <-time.After(time.Second):
		t.Fatal("superseded wait did not return")
	}

	assert.Equal(t, uint64(1), stores.Performances.Stats().Cancelled)
}

func TestPerformanceBrowser_RefreshRefetches(t *testing.T) {
	catalog := &stubCatalog{pages: map[int][]*domain.Performance{1: testPerformances()}}
	svc, _, _ := newPerformanceFixture(t, catalog)

	b := svc.NewBrowser()
	defer b.Close()

	_, err := b.Current(context.Background())
	require.NoError(t, err)
	_, err = b.Current(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, catalog.calls())

	res, err := b.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.calls())
	assert.Len(t, res.Data, 2)
}

package assembly

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/store"
)

type fakeMetadata struct {
	byName map[string]*domain.ArtistMetadata
	fail   map[string]bool
	calls  atomic.Int32
}

func (f *fakeMetadata) SearchArtist(_ context.Context, name string) (*domain.ArtistMetadata, error) {
	f.calls.Add(1)
	if f.fail[name] {
		return nil, errors.New("metadata provider exploded")
	}

	return f.byName[name], nil
}

type fakeEncyclopedia struct {
	byTitle map[string]*domain.EncyclopediaSummary
	fail    bool
}

func (f *fakeEncyclopedia) Summary(_ context.Context, title string) (*domain.EncyclopediaSummary, error) {
	if f.fail {
		return nil, errors.New("encyclopedia unreachable")
	}

	return f.byTitle[title], nil
}

type fakeCatalog struct {
	mu             sync.Mutex
	details        map[string]*domain.Performance
	facilities     map[string]*domain.Coordinates
	detailCalls    map[string]int
	facilityCalls  map[string]int
	facilityDelay  time.Duration
	facilityFailed bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		details:       make(map[string]*domain.Performance),
		facilities:    make(map[string]*domain.Coordinates),
		detailCalls:   make(map[string]int),
		facilityCalls: make(map[string]int),
	}
}

func (f *fakeCatalog) List(context.Context, domain.PerformanceQuery) ([]*domain.Performance, error) {
	return nil, nil
}

func (f *fakeCatalog) Detail(_ context.Context, id string) (*domain.Performance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[id]++

	return f.details[id], nil
}

func (f *fakeCatalog) Facility(ctx context.Context, id string) (*domain.Coordinates, error) {
	f.mu.Lock()
	f.facilityCalls[id]++
	delay, failed := f.facilityDelay, f.facilityFailed
	loc := f.facilities[id]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failed {
		return nil, errors.New("facility lookup failed")
	}

	return loc, nil
}

func (f *fakeCatalog) facilityCallCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.facilityCalls[id]
}

func rosterEntry(i int) domain.RosterEntry {
	return domain.RosterEntry{
		ID:          fmt.Sprintf("performer-%d", i),
		Category:    domain.CategoryPerformer,
		SearchName:  fmt.Sprintf("Artist %d", i),
		WikiTitle:   fmt.Sprintf("Artist_%d", i),
		DisplayName: fmt.Sprintf("아티스트 %d", i),
		EnglishName: fmt.Sprintf("Artist %d", i),
		Role:        domain.LocalizedPair{Localized: "피아니스트", English: "Pianist"},
		Nationality: "대한민국",
	}
}

func TestAssembleArtist_Precedence(t *testing.T) {
	entry := rosterEntry(0)

	meta := &domain.ArtistMetadata{Name: "Artist 0", Thumbnail: "meta.jpg", BioEnglish: "meta bio"}
	wiki := &domain.EncyclopediaSummary{Thumbnail: "wiki.jpg", OriginalImage: "orig.jpg", Extract: "wiki extract"}

	tests := []struct {
		name      string
		meta      *domain.ArtistMetadata
		wiki      *domain.EncyclopediaSummary
		wantImage string
		wantBio   string
		wantAny   bool
	}{
		{"both sources", meta, wiki, "meta.jpg", "meta bio", true},
		{"metadata only", meta, nil, "meta.jpg", "meta bio", true},
		{"encyclopedia only", nil, wiki, "wiki.jpg", "wiki extract", true},
		{"neither", nil, nil, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Options{
				Metadata:     &fakeMetadata{byName: map[string]*domain.ArtistMetadata{entry.SearchName: tt.meta}},
				Encyclopedia: &fakeEncyclopedia{byTitle: map[string]*domain.EncyclopediaSummary{entry.WikiTitle: tt.wiki}},
			})

			artist, contributed := a.AssembleArtist(context.Background(), entry)

			assert.Equal(t, tt.wantAny, contributed)
			assert.Equal(t, tt.wantImage, artist.ImageURL)
			assert.Equal(t, tt.wantBio, artist.Bio.Localized)
			assert.Equal(t, entry.ID, artist.ID)
			assert.Equal(t, "대한민국", artist.Nationality)
			assert.Equal(t, "Pianist", artist.Role.English)
		})
	}
}

func TestAssembleArtist_OneSourceFailing(t *testing.T) {
	entry := rosterEntry(1)
	a := New(Options{
		Metadata: &fakeMetadata{fail: map[string]bool{entry.SearchName: true}},
		Encyclopedia: &fakeEncyclopedia{byTitle: map[string]*domain.EncyclopediaSummary{
			entry.WikiTitle: {OriginalImage: "orig.jpg", Extract: "from the encyclopedia"},
		}},
		Logger: zap.NewNop(),
	})

	artist, contributed := a.AssembleArtist(context.Background(), entry)

	assert.True(t, contributed)
	assert.Equal(t, "orig.jpg", artist.ImageURL)
	assert.Equal(t, "from the encyclopedia", artist.Bio.Localized)
}

func TestAssembleArtist_NoProvidersConfigured(t *testing.T) {
	entry := rosterEntry(2)
	a := New(Options{})

	artist, contributed := a.AssembleArtist(context.Background(), entry)

	assert.False(t, contributed)
	assert.Equal(t, "아티스트 2", artist.Name.Localized)
	assert.Empty(t, artist.ImageURL)
	assert.Empty(t, artist.Bio.Localized)
}

func TestAssembleArtistBatch_PartialFailureIsolation(t *testing.T) {
	const k = 6
	entries := make([]domain.RosterEntry, k)
	meta := &fakeMetadata{
		byName: make(map[string]*domain.ArtistMetadata),
		fail:   map[string]bool{"Artist 3": true},
	}
	for i := range entries {
		entries[i] = rosterEntry(i)
		meta.byName[entries[i].SearchName] = &domain.ArtistMetadata{Thumbnail: fmt.Sprintf("%d.jpg", i)}
	}

	a := New(Options{
		Metadata:     meta,
		Encyclopedia: &fakeEncyclopedia{fail: true},
		Concurrency:  2,
	})

	result := a.AssembleArtistBatch(context.Background(), entries)

	require.Len(t, result.Artists, k)
	assert.Equal(t, k-1, result.Contributed)
	assert.Equal(t, int32(k), meta.calls.Load())
	for i, artist := range result.Artists {
		assert.Equal(t, entries[i].ID, artist.ID, "order preserved")
		if i == 3 {
			assert.Empty(t, artist.ImageURL)
			assert.Equal(t, "아티스트 3", artist.Name.Localized)
			continue
		}
		assert.Equal(t, fmt.Sprintf("%d.jpg", i), artist.ImageURL)
	}
}

func TestAssembleArtistBatch_TotalFailure(t *testing.T) {
	entries := []domain.RosterEntry{rosterEntry(0), rosterEntry(1)}
	a := New(Options{
		Metadata:     &fakeMetadata{fail: map[string]bool{"Artist 0": true, "Artist 1": true}},
		Encyclopedia: &fakeEncyclopedia{fail: true},
	})

	result := a.AssembleArtistBatch(context.Background(), entries)

	assert.Len(t, result.Artists, 2)
	assert.Zero(t, result.Contributed)
}

func newEnrichAssembler(catalog *fakeCatalog) *Assembler {
	return New(Options{
		Catalog:     catalog,
		Details:     store.New(store.Options[*domain.Performance]{Name: "details", TTL: time.Hour}),
		Facilities:  store.New(store.Options[*domain.Coordinates]{Name: "facilities", TTL: time.Hour}),
		Concurrency: 4,
	})
}

func TestEnrichPerformanceLocation_KnownCoordinatesShortCircuit(t *testing.T) {
	catalog := newFakeCatalog()
	a := newEnrichAssembler(catalog)

	p := &domain.Performance{ID: "PF1", FacilityID: "FC1", Location: &domain.Coordinates{Lat: 1, Lng: 2}}
	out := a.EnrichPerformanceLocation(context.Background(), p)

	assert.Same(t, p, out)
	assert.Zero(t, catalog.detailCalls["PF1"])
	assert.Zero(t, catalog.facilityCallCount("FC1"))
}

func TestEnrichPerformanceLocation_ResolvesFacilityThroughDetail(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.details["PF1"] = &domain.Performance{ID: "PF1", FacilityID: "FC1", PosterURL: "poster.jpg"}
	catalog.facilities["FC1"] = &domain.Coordinates{Lat: 37.5, Lng: 127.0}
	a := newEnrichAssembler(catalog)

	p := &domain.Performance{ID: "PF1", Title: "Recital"}
	out := a.EnrichPerformanceLocation(context.Background(), p)

	require.NotNil(t, out.Location)
	assert.Equal(t, 37.5, out.Location.Lat)
	assert.Equal(t, "FC1", out.FacilityID)
	assert.Equal(t, "poster.jpg", out.PosterURL)
	assert.Nil(t, p.Location, "input is not mutated")

	// second pass is served from the caches
	a.EnrichPerformanceLocation(context.Background(), p)
	assert.Equal(t, 1, catalog.detailCalls["PF1"])
	assert.Equal(t, 1, catalog.facilityCallCount("FC1"))
}

func TestEnrichPerformanceLocation_UnknownFacility(t *testing.T) {
	catalog := newFakeCatalog()
	a := newEnrichAssembler(catalog)

	out := a.EnrichPerformanceLocation(context.Background(), &domain.Performance{ID: "PF404"})

	assert.Nil(t, out.Location)
	assert.Equal(t, 1, catalog.detailCalls["PF404"])
}

func TestEnrichPerformanceLocation_FacilityFailure(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.facilityFailed = true
	a := newEnrichAssembler(catalog)

	out := a.EnrichPerformanceLocation(context.Background(), &domain.Performance{ID: "PF1", FacilityID: "FC1"})

	assert.Nil(t, out.Location)
	assert.Equal(t, "FC1", out.FacilityID)
}

func TestEnrichPerformanceLocations_SharedFacilityLookedUpOnce(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.facilities["FC-SHARED"] = &domain.Coordinates{Lat: 37.48, Lng: 127.01}
	catalog.facilities["FC-OTHER"] = &domain.Coordinates{Lat: 35.1, Lng: 129.0}
	catalog.facilityDelay = 20 * time.Millisecond
	a := newEnrichAssembler(catalog)

	perfs := []*domain.Performance{
		{ID: "PF1", FacilityID: "FC-SHARED"},
		{ID: "PF2", FacilityID: "FC-SHARED"},
		{ID: "PF3", FacilityID: "FC-OTHER"},
		{ID: "PF4", FacilityID: "FC-SHARED"},
	}

	out := a.EnrichPerformanceLocations(context.Background(), perfs)

	require.Len(t, out, 4)
	assert.Equal(t, 1, catalog.facilityCallCount("FC-SHARED"))
	assert.Equal(t, 1, catalog.facilityCallCount("FC-OTHER"))
	for i, p := range out {
		assert.Equal(t, perfs[i].ID, p.ID)
		require.NotNil(t, p.Location)
	}
	assert.Equal(t, *out[0].Location, *out[1].Location)
	assert.Equal(t, *out[0].Location, *out[3].Location)
	assert.Equal(t, 35.1, out[2].Location.Lat)
}

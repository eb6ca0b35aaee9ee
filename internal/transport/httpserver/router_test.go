package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classichub-service/internal/app/assembly"
	"classichub-service/internal/app/service"
	"classichub-service/internal/domain"
	"classichub-service/internal/metrics"
	"classichub-service/internal/relay"
	"classichub-service/internal/store"
	"classichub-service/internal/transport/httpserver/dto"
	"classichub-service/internal/transport/httpserver/middleware"
)

var testNow = time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)

type fakeCatalog struct{}

func (fakeCatalog) List(_ context.Context, q domain.PerformanceQuery) ([]*domain.Performance, error) {
	if q.Page > 1 {
		return []*domain.Performance{}, nil
	}

	return []*domain.Performance{
		domain.NewPerformance("PF1", "Mahler 5", "Seoul Arts Center", testNow, testNow.AddDate(0, 0, 2), domain.StatusRunning, testNow),
		domain.NewPerformance("PF2", "Bach Cello Suites", "Lotte Concert Hall", testNow.AddDate(0, 0, 7), testNow.AddDate(0, 0, 7), "", testNow),
	}, nil
}

func (fakeCatalog) Detail(_ context.Context, id string) (*domain.Performance, error) {
	if id == "PF503" {
		return nil, errors.New("kopis: connection reset")
	}
	if id != "PF1" {
		return nil, nil
	}
	p := domain.NewPerformance("PF1", "Mahler 5", "Seoul Arts Center", testNow, testNow.AddDate(0, 0, 2), domain.StatusRunning, testNow)
	p.FacilityID = "FC1"

	return p, nil
}

func (fakeCatalog) Facility(context.Context, string) (*domain.Coordinates, error) {
	return &domain.Coordinates{Lat: 37.47, Lng: 127.01}, nil
}

type fakeComposers struct{ err error }

func (f fakeComposers) PopularComposers(context.Context) ([]domain.Composer, error) {
	return nil, f.err
}

func (f fakeComposers) Works(context.Context, string) ([]domain.ComposerWork, error) {
	return []domain.ComposerWork{{ID: "1", Title: "Goldberg Variations", Popular: true}}, f.err
}

type fakeNews struct{}

func (fakeNews) Name() string { return "naver" }

func (fakeNews) SearchNews(context.Context, domain.NewsQuery) ([]domain.NewsArticle, error) {
	return []domain.NewsArticle{{Title: "Season opens", Link: "https://news.example/1", PublishedAt: testNow, Source: "naver"}}, nil
}

type fakeVideos struct{}

func (fakeVideos) SearchVideos(_ context.Context, query string, _ int) ([]domain.Video, error) {
	return []domain.Video{{ID: "v1", Title: query, URL: "https://www.youtube.com/watch?v=v1"}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := zap.NewNop()
	stores := service.NewStores(service.StoreSettings{
		PerformanceTTL: time.Minute,
		DetailTTL:      time.Minute,
		FacilityTTL:    time.Minute,
		ArtistTTL:      time.Minute,
		ComposerTTL:    time.Minute,
		NewsTTL:        time.Minute,
		VideoTTL:       time.Minute,
	}, nil, nil, logger, nil)

	asm := assembly.New(assembly.Options{
		Catalog:    fakeCatalog{},
		Details:    stores.Details,
		Facilities: stores.Facilities,
		Logger:     logger,
	})

	reg := prometheus.NewRegistry()
	metrics.NewCollector(reg)

	srv, err := NewServer(ServerConfig{RequestTimeout: 5 * time.Second, Location: time.UTC}, Dependencies{
		Performances: service.NewPerformanceService(fakeCatalog{}, stores.Performances, asm, nil, logger),
		Artists: service.NewArtistService(asm, fakeComposers{err: errors.New("openopus down")}, stores,
			store.NewFollowSet(nil, logger), store.NewCheerBoard(nil, logger, nil),
			service.ArtistSettings{}, nil, logger),
		News:    service.NewNewsService([]domain.NewsProvider{fakeNews{}}, stores.News, logger),
		Media:   service.NewMediaService(fakeVideos{}, stores.Videos, logger),
		Stores:  stores,
		Relay:   relay.New([]relay.Target{{Name: "kopis", BaseURL: "http://127.0.0.1:1"}}, relay.Options{Timeout: time.Second}),
		Metrics: reg,
		Checks:  map[string]middleware.Check{"database": func(context.Context) error { return nil }},
	}, logger)
	require.NoError(t, err)

	return srv
}

func do(t *testing.T, srv *Server, method, target string, body io.Reader) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.App.Test(req, 5000)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestPerformances(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/v1/performances?q=mahler&page_size=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var page dto.Envelope[[]*domain.Performance]
	require.NoError(t, json.Unmarshal(body, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "PF1", page.Data[0].ID)
	assert.Equal(t, "ready", page.State)
	assert.Equal(t, &dto.PaginationMeta{Page: 1, PageSize: 10, Count: 1}, page.Pagination)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/performances?status=sold_out", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/performances/PF1/location", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"lat":37.47,"lng":127.01}`, string(body))

	resp, body = do(t, srv, http.MethodGet, "/api/v1/performances/PF404", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), dto.CodeNotFound)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/performances/PF503", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "a failing catalog is not a missing performance")
}

func TestArtists_FallbackCarriesWarning(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/v1/artists?category=conductor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env dto.Envelope[[]domain.Artist]
	require.NoError(t, json.Unmarshal(body, &env))
	assert.NotEmpty(t, env.Data)
	assert.True(t, env.Fallback)
	assert.Equal(t, service.WarningFallback, env.Warning)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/artists?category=singer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/artists/weekly", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestArtists_FollowAndCheer(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/artists/performer-0/follow", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"artist_id":"performer-0","followed":true}`, string(body))

	resp, body = do(t, srv, http.MethodPost, "/api/v1/artists/performer-0/cheers",
		strings.NewReader(`{"author":"fan","message":"브라보!"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var cheer domain.CheerMessage
	require.NoError(t, json.Unmarshal(body, &cheer))

	resp, body = do(t, srv, http.MethodGet, "/api/v1/artists/performer-0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail dto.ArtistDetailResponse
	require.NoError(t, json.Unmarshal(body, &detail))
	assert.Equal(t, "performer-0", detail.Data.ID)
	assert.True(t, detail.Followed)
	assert.Equal(t, 1, detail.CheerCount)

	resp, body = do(t, srv, http.MethodPost, "/api/v1/artists/performer-0/cheers",
		strings.NewReader(`{"message":"`+strings.Repeat("가", store.MaxCheerLength+1)+`"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), dto.CodeInvalidCheer)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/artists/performer-0/cheers", strings.NewReader(`{"author":"fan"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/api/v1/cheers/"+cheer.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = do(t, srv, http.MethodGet, "/api/v1/artists/performer-0/cheers", nil)
	assert.JSONEq(t, `{"artist_id":"performer-0","cheers":[]}`, string(body))

	_, body = do(t, srv, http.MethodGet, "/api/v1/follows", nil)
	assert.JSONEq(t, `{"artist_ids":["performer-0"]}`, string(body))

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/artists/nobody-9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComposers_FailureIsEmptyWithWarning(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/v1/composers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env dto.Envelope[[]domain.Composer]
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Empty(t, env.Data)
	assert.Equal(t, service.WarningEmpty, env.Warning)
}

func TestNewsAndVideos(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/v1/news?q=chopin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Season opens")

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/news?source=telegraph", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = do(t, srv, http.MethodGet, "/api/v1/news/sources", nil)
	assert.JSONEq(t, `{"sources":["naver"]}`, string(body))

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/videos", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/artists/performer-0/videos?limit=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Seong-Jin Cho")
}

func TestOperationalRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodGet, "/livez", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "performances")
	assert.Contains(t, string(body), "/api/relay/kopis")

	resp, _ = do(t, srv, http.MethodGet, "/static/dashboard.css", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/relay/spotify?path=/v1/me", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

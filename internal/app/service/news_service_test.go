package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/store"
)

type stubNews struct {
	name     string
	articles []domain.NewsArticle
	err      error
	calls    atomic.Int32
	lastQ    atomic.Value
}

func (s *stubNews) Name() string { return s.name }

func (s *stubNews) SearchNews(_ context.Context, q domain.NewsQuery) ([]domain.NewsArticle, error) {
	s.calls.Add(1)
	s.lastQ.Store(q)
	if s.err != nil {
		return nil, s.err
	}

	return s.articles, nil
}

func newsStore() *store.Store[[]domain.NewsArticle] {
	return NewStores(StoreSettings{NewsTTL: time.Minute}, nil, nil, zap.NewNop(), nil).News
}

func article(source, title string, day int) domain.NewsArticle {
	return domain.NewsArticle{
		Title:       title,
		Source:      source,
		PublishedAt: time.Date(2025, 5, day, 9, 0, 0, 0, time.UTC),
	}
}

func TestNewsService_Search_MergesNewestFirst(t *testing.T) {
	naver := &stubNews{name: "naver", articles: []domain.NewsArticle{
		article("naver", "n-old", 1),
		article("naver", "n-new", 10),
	}}
	feeds := &stubNews{name: "rss", articles: []domain.NewsArticle{
		article("rss", "r-mid", 5),
	}}
	svc := NewNewsService([]domain.NewsProvider{naver, feeds}, newsStore(), zap.NewNop())

	res, err := svc.Search(context.Background(), domain.NewsQuery{}, "")
	require.NoError(t, err)

	titles := make([]string, len(res.Data))
	for i, a := range res.Data {
		titles[i] = a.Title
	}
	assert.Equal(t, []string{"n-new", "r-mid", "n-old"}, titles)
	assert.Empty(t, res.Warning)

	q := naver.lastQ.Load().(domain.NewsQuery)
	assert.Equal(t, domain.DefaultNewsQuery, q.Query)
}

func TestNewsService_Search_PartialFailure(t *testing.T) {
	naver := &stubNews{name: "naver", err: errors.New("quota exceeded")}
	feeds := &stubNews{name: "rss", articles: []domain.NewsArticle{article("rss", "only", 3)}}
	svc := NewNewsService([]domain.NewsProvider{naver, feeds}, newsStore(), zap.NewNop())

	res, err := svc.Search(context.Background(), domain.NewsQuery{Query: "조성진"}, "")

	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "only", res.Data[0].Title)
	assert.Equal(t, store.StateReady, res.State)
}

func TestNewsService_Search_TotalFailureIsEmptyWithWarning(t *testing.T) {
	naver := &stubNews{name: "naver", err: errors.New("quota exceeded")}
	feeds := &stubNews{name: "rss", err: errors.New("feeds unreachable")}
	svc := NewNewsService([]domain.NewsProvider{naver, feeds}, newsStore(), zap.NewNop())

	res, err := svc.Search(context.Background(), domain.NewsQuery{}, "")

	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.True(t, res.Fallback)
	assert.Equal(t, WarningEmpty, res.Warning)
}

func TestNewsService_Search_SingleSource(t *testing.T) {
	naver := &stubNews{name: "naver", articles: []domain.NewsArticle{article("naver", "n", 1)}}
	feeds := &stubNews{name: "rss", articles: []domain.NewsArticle{article("rss", "r", 2)}}
	svc := NewNewsService([]domain.NewsProvider{naver, feeds}, newsStore(), zap.NewNop())

	res, err := svc.Search(context.Background(), domain.NewsQuery{}, "rss")
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "r", res.Data[0].Title)
	assert.Zero(t, naver.calls.Load())

	_, err = svc.Search(context.Background(), domain.NewsQuery{}, "gazette")
	assert.True(t, errors.Is(err, ErrUnknownSource))

	assert.Equal(t, []string{"naver", "rss"}, svc.Sources())
}

func TestNewsService_Search_Cached(t *testing.T) {
	naver := &stubNews{name: "naver", articles: []domain.NewsArticle{article("naver", "n", 1)}}
	svc := NewNewsService([]domain.NewsProvider{naver}, newsStore(), zap.NewNop())

	for range 3 {
		_, err := svc.Search(context.Background(), domain.NewsQuery{Query: "말러"}, "")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), naver.calls.Load())
}

type stubVideos struct {
	videos    []domain.Video
	err       error
	lastQuery string
	lastLimit int
	calls     int
}

func (s *stubVideos) SearchVideos(_ context.Context, query string, limit int) ([]domain.Video, error) {
	s.calls++
	s.lastQuery, s.lastLimit = query, limit
	if s.err != nil {
		return nil, s.err
	}

	return s.videos, nil
}

func videoStore() *store.Store[[]domain.Video] {
	return NewStores(StoreSettings{VideoTTL: time.Minute}, nil, nil, zap.NewNop(), nil).Videos
}

func TestMediaService_Search(t *testing.T) {
	videos := &stubVideos{videos: []domain.Video{{ID: "abc", Title: "Chopin Ballade No. 1"}}}
	svc := NewMediaService(videos, videoStore(), zap.NewNop())

	res, err := svc.Search(context.Background(), "  Chopin Ballade ", 0)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Chopin Ballade", videos.lastQuery)
	assert.Equal(t, defaultVideoLimit, videos.lastLimit)

	_, err = svc.Search(context.Background(), "chopin ballade", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, videos.calls, "case-insensitive key shares the cached page")
}

func TestMediaService_ForArtist(t *testing.T) {
	videos := &stubVideos{}
	svc := NewMediaService(videos, videoStore(), zap.NewNop())

	_, err := svc.ForArtist(context.Background(), "performer-0", 5)
	require.NoError(t, err)
	assert.Equal(t, "Seong-Jin Cho", videos.lastQuery)
	assert.Equal(t, 5, videos.lastLimit)

	_, err = svc.ForArtist(context.Background(), "nobody", 5)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMediaService_FailureIsEmptyWithWarning(t *testing.T) {
	svc := NewMediaService(&stubVideos{err: errors.New("quota")}, videoStore(), zap.NewNop())

	res, err := svc.Search(context.Background(), "Mahler", 3)

	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Equal(t, WarningEmpty, res.Warning)
}

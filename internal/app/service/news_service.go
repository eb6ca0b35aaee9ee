package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/store"
)

// ErrUnknownSource is returned when a news source name is not registered.
var ErrUnknownSource = errors.New("unknown news source")

// NewsService searches every news source through one store.
type NewsService struct {
	providers []domain.NewsProvider
	news      *store.Store[[]domain.NewsArticle]
	logger    *zap.Logger
}

// NewNewsService creates a new NewsService.
func NewNewsService(providers []domain.NewsProvider, news *store.Store[[]domain.NewsArticle], logger *zap.Logger) *NewsService {
	return &NewsService{
		providers: providers,
		news:      news,
		logger:    logger,
	}
}

// sourceResult holds the outcome of one source within a search.
type sourceResult struct {
	Source string
	Count  int
	Error  error
}

// Search returns news for q from source, or from every source merged newest
// first when source is empty. Sources are queried concurrently and a failing
// source only removes its own articles.
func (s *NewsService) Search(ctx context.Context, q domain.NewsQuery, source string) (Result[[]domain.NewsArticle], error) {
	q.Normalize()

	providers, err := s.sourcesFor(source)
	if err != nil {
		return Result[[]domain.NewsArticle]{}, err
	}

	key := source + "|" + q.Key()
	snap, err := s.news.FetchIfNeeded(ctx, key, func(ctx context.Context) ([]domain.NewsArticle, error) {
		return s.searchAll(ctx, providers, q)
	})
	if err != nil {
		return Result[[]domain.NewsArticle]{}, err
	}

	return resultOf(snap, true), nil
}

// Sources returns the registered source names.
func (s *NewsService) Sources() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}

	return names
}

// Warm loads the default query from every source.
func (s *NewsService) Warm(ctx context.Context) error {
	_, err := s.Search(ctx, domain.NewsQuery{}, "")

	return err
}

func (s *NewsService) sourcesFor(source string) ([]domain.NewsProvider, error) {
	if source == "" {
		return s.providers, nil
	}
	for _, p := range s.providers {
		if p.Name() == source {
			return []domain.NewsProvider{p}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

func (s *NewsService) searchAll(ctx context.Context, providers []domain.NewsProvider, q domain.NewsQuery) ([]domain.NewsArticle, error) {
	results := make([]sourceResult, len(providers))
	articles := make([][]domain.NewsArticle, len(providers))
	var wg sync.WaitGroup

	for i, provider := range providers {
		wg.Add(1)
		go func(idx int, p domain.NewsProvider) {
			defer wg.Done()
			items, err := p.SearchNews(ctx, q)
			results[idx] = sourceResult{Source: p.Name(), Count: len(items), Error: err}
			articles[idx] = items
		}(i, provider)
	}

	wg.Wait()

	var (
		merged []domain.NewsArticle
		errs   []error
	)
	for i, r := range results {
		if r.Error != nil {
			s.logger.Warn("news source failed",
				zap.String("source", r.Source),
				zap.Error(r.Error),
			)
			errs = append(errs, r.Error)

			continue
		}
		merged = append(merged, articles[i]...)
	}

	if len(providers) > 0 && len(errs) == len(providers) {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if merged == nil {
		merged = []domain.NewsArticle{}
	}

	s.logger.Debug("news search completed",
		zap.String("query", q.Query),
		zap.Int("sources", len(providers)),
		zap.Int("sources_failed", len(errs)),
		zap.Int("count", len(merged)),
	)

	return merged, nil
}

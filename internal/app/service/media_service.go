package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/roster"
	"classichub-service/internal/store"
)

const defaultVideoLimit = 10

// MediaService searches videos.
type MediaService struct {
	videos domain.VideoProvider
	store  *store.Store[[]domain.Video]
	logger *zap.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(videos domain.VideoProvider, st *store.Store[[]domain.Video], logger *zap.Logger) *MediaService {
	return &MediaService{
		videos: videos,
		store:  st,
		logger: logger,
	}
}

// Search returns up to limit videos for query.
func (s *MediaService) Search(ctx context.Context, query string, limit int) (Result[[]domain.Video], error) {
	query = strings.TrimSpace(query)
	if limit <= 0 {
		limit = defaultVideoLimit
	}

	key := strconv.Itoa(limit) + "|" + strings.ToLower(query)
	snap, err := s.store.FetchIfNeeded(ctx, key, func(ctx context.Context) ([]domain.Video, error) {
		return s.videos.SearchVideos(ctx, query, limit)
	})
	if err != nil {
		return Result[[]domain.Video]{}, err
	}

	return resultOf(snap, true), nil
}

// ForArtist searches videos of a roster artist by its search name.
func (s *MediaService) ForArtist(ctx context.Context, artistID string, limit int) (Result[[]domain.Video], error) {
	entry, ok := roster.Find(artistID)
	if !ok {
		return Result[[]domain.Video]{}, fmt.Errorf("artist %s: %w", artistID, domain.ErrNotFound)
	}

	return s.Search(ctx, entry.SearchName, limit)
}

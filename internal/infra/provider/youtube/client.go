// Package youtube implements the video search adapter.
package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/infra/provider"
)

// Name is the provider identifier.
const Name = "youtube"

// CredentialParam is the query parameter carrying the API key.
const CredentialParam = "key"

const (
	searchPath   = "/search"
	maxResults   = 50
	defaultLimit = 10
)

// Client implements domain.VideoProvider.
type Client struct {
	base   *provider.Base
	apiKey string
}

// New creates a video search client.
func New(cfg provider.ClientConfig, apiKey string, logger *zap.Logger, obs provider.Observer) *Client {
	return &Client{
		base:   provider.NewBase(Name, cfg, logger, obs),
		apiKey: apiKey,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// SearchVideos returns up to limit videos matching query.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]domain.Video, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Video{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxResults {
		limit = maxResults
	}

	var result searchResponse
	_, err := c.base.Get(ctx, searchPath, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"part":       "snippet",
			"type":       "video",
			"maxResults": strconv.Itoa(limit),
			"q":          query,
		}).
			SetHeader("Accept", "application/json").
			SetResult(&result)
		if c.apiKey != "" {
			r.SetQueryParam(CredentialParam, c.apiKey)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("searching videos %q: %w", query, err)
	}

	videos := make([]domain.Video, 0, len(result.Items))
	for i := range result.Items {
		if result.Items[i].ID.VideoID == "" {
			continue
		}
		videos = append(videos, result.Items[i].toDomain())
	}

	return videos, nil
}

// Package naver implements the news search adapter.
package naver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/infra/provider"
)

// Name is the provider identifier.
const Name = "naver"

// Credential headers injected on every call.
const (
	HeaderClientID     = "X-Naver-Client-Id"
	HeaderClientSecret = "X-Naver-Client-Secret"
)

const (
	newsPath = "/v1/search/news.json"
	maxStart = 1000
)

// Client implements domain.NewsProvider.
type Client struct {
	base         *provider.Base
	clientID     string
	clientSecret string
}

// New creates a news search client.
func New(cfg provider.ClientConfig, clientID, clientSecret string, logger *zap.Logger, obs provider.Observer) *Client {
	return &Client{
		base:         provider.NewBase(Name, cfg, logger, obs),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// SearchNews returns one page of news articles for q.
func (c *Client) SearchNews(ctx context.Context, q domain.NewsQuery) ([]domain.NewsArticle, error) {
	q.Normalize()

	start := (q.Page-1)*q.PageSize + 1
	if start > maxStart {
		return []domain.NewsArticle{}, nil
	}

	var result newsResponse
	_, err := c.base.Get(ctx, newsPath, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"query":   q.Query,
			"display": strconv.Itoa(q.PageSize),
			"start":   strconv.Itoa(start),
			"sort":    q.SortBy,
		}).
			SetHeader("Accept", "application/json").
			SetResult(&result)
		if c.clientID != "" {
			r.SetHeader(HeaderClientID, c.clientID)
			r.SetHeader(HeaderClientSecret, c.clientSecret)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("searching news %q: %w", q.Query, err)
	}

	articles := make([]domain.NewsArticle, 0, len(result.Items))
	for i := range result.Items {
		a := result.Items[i].toDomain()
		if a.Title == "" || a.Link == "" {
			continue
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// Package rss reads classical-music magazine feeds as a news source.
package rss

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"classichub-service/internal/domain"
	"classichub-service/internal/infra/provider"
)

// Name is the provider identifier.
const Name = "rss"

const (
	feedAccept      = "application/rss+xml, application/atom+xml, application/xml, text/xml, */*"
	maxParallelism  = 4
	maxSummaryRunes = 300
)

// Client implements domain.NewsProvider over a fixed set of feeds.
type Client struct {
	base   *provider.Base
	feeds  []string
	policy *bluemonday.Policy
}

// New creates a feed reader for the given feed URLs.
func New(cfg provider.ClientConfig, feeds []string, logger *zap.Logger, obs provider.Observer) *Client {
	return &Client{
		base:   provider.NewBase(Name, cfg, logger, obs),
		feeds:  feeds,
		policy: bluemonday.StrictPolicy(),
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// SearchNews merges every feed, newest first, and keeps items whose title or
// summary contains the query. The default query matches everything. A feed
// that fails is skipped; an error is returned only when all of them fail.
func (c *Client) SearchNews(ctx context.Context, q domain.NewsQuery) ([]domain.NewsArticle, error) {
	q.Normalize()
	if len(c.feeds) == 0 {
		return []domain.NewsArticle{}, nil
	}

	var (
		mu       sync.Mutex
		all      []domain.NewsArticle
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelism)
	for _, feedURL := range c.feeds {
		g.Go(func() error {
			items, err := c.fetchFeed(gctx, feedURL)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.base.Logger().Warn("feed fetch failed", zap.String("feed_url", feedURL), zap.Error(err))
				failures = append(failures, err)

				return nil
			}
			all = append(all, items...)

			return nil
		})
	}
	_ = g.Wait()

	if len(failures) == len(c.feeds) {
		return nil, fmt.Errorf("reading feeds: %w", errors.Join(failures...))
	}

	filtered := filter(all, q.Query)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.After(filtered[j].PublishedAt)
	})

	return page(filtered, q.Page, q.PageSize), nil
}

func (c *Client) fetchFeed(ctx context.Context, feedURL string) ([]domain.NewsArticle, error) {
	resp, err := c.base.Get(ctx, feedURL, func(r *resty.Request) {
		r.SetHeader("Accept", feedAccept)
	})
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(resp.String())
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w: %w", feedURL, domain.ErrInvalidResponse, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = Name
	}

	articles := make([]domain.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		articles = append(articles, domain.NewsArticle{
			Title:       c.plainText(item.Title),
			Link:        item.Link,
			Summary:     truncate(c.plainText(item.Description), maxSummaryRunes),
			PublishedAt: published(item),
			Source:      source,
		})
	}

	return articles, nil
}

func (c *Client) plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}

func published(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}

func filter(articles []domain.NewsArticle, query string) []domain.NewsArticle {
	if query == domain.DefaultNewsQuery {
		return articles
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), needle) || strings.Contains(strings.ToLower(a.Summary), needle) {
			out = append(out, a)
		}
	}

	return out
}

func page(articles []domain.NewsArticle, pageNum, size int) []domain.NewsArticle {
	start := (pageNum - 1) * size
	if start >= len(articles) {
		return []domain.NewsArticle{}
	}
	end := start + size
	if end > len(articles) {
		end = len(articles)
	}

	return articles[start:end]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "…"
}

// Package wikipedia implements the encyclopedia summary adapter.
package wikipedia

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/infra/provider"
)

// Name is the provider identifier.
const Name = "wikipedia"

const summaryPath = "/page/summary/{title}"

// Client implements domain.EncyclopediaProvider.
type Client struct {
	base *provider.Base
}

// New creates an encyclopedia client.
func New(cfg provider.ClientConfig, logger *zap.Logger, obs provider.Observer) *Client {
	return &Client{base: provider.NewBase(Name, cfg, logger, obs)}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// Summary returns the page summary for title, or nil when the page is missing.
func (c *Client) Summary(ctx context.Context, title string) (*domain.EncyclopediaSummary, error) {
	title = normalizeTitle(title)
	if title == "" {
		return nil, nil
	}

	var result summaryResponse
	_, err := c.base.Get(ctx, summaryPath, func(r *resty.Request) {
		r.SetPathParam("title", title).
			SetHeader("Accept", "application/json").
			SetResult(&result)
	})
	if err != nil {
		if provider.IsExpected(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("fetching summary %q: %w", title, err)
	}

	if result.Type == typeDisambiguation || (result.Extract == "" && result.Thumbnail == nil && result.OriginalImage == nil) {
		c.base.Logger().Debug("summary has no usable content",
			zap.String("title", title),
			zap.String("type", result.Type),
		)

		return nil, nil
	}

	return result.toDomain(), nil
}

// normalizeTitle turns a display title into the canonical page key.
func normalizeTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

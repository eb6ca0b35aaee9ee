// Package audiodb implements the artist metadata adapter.
package audiodb

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
const Name = "audiodb"

const searchPath = "/search.php"

// Client implements domain.ArtistMetadataProvider.
type Client struct {
	base *provider.Base
}

// New creates a metadata client. The API key is part of the base path, so
// it is appended to cfg.BaseURL when given.
func New(cfg provider.ClientConfig, apiKey string, logger *zap.Logger, obs provider.Observer) *Client {
	if apiKey != "" {
		cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/" + apiKey
	}

	return &Client{base: provider.NewBase(Name, cfg, logger, obs)}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// SearchArtist returns the first match for name, or nil when nothing matched
// or the payload was unusable.
func (c *Client) SearchArtist(ctx context.Context, name string) (*domain.ArtistMetadata, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var result searchResponse
	_, err := c.base.Get(ctx, searchPath, func(r *resty.Request) {
		r.SetQueryParam("s", name).
			SetHeader("Accept", "application/json").
			SetResult(&result)
	})
	if err != nil {
		if provider.IsExpected(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("searching artist %q: %w", name, err)
	}

	if len(result.Artists) == 0 {
		c.base.Logger().Debug("no artist match", zap.String("name", name))

		return nil, nil
	}

	return result.Artists[0].toDomain(), nil
}

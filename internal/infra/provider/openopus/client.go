// Package openopus implements the composer and works adapter.
package openopus

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
const Name = "openopus"

const (
	popularComposersPath = "/composer/list/pop.json"
	worksPath            = "/work/list/composer/{id}/genre/all.json"
)

// Client implements domain.ComposerProvider.
type Client struct {
	base *provider.Base
}

// New creates a composer client.
func New(cfg provider.ClientConfig, logger *zap.Logger, obs provider.Observer) *Client {
	return &Client{base: provider.NewBase(Name, cfg, logger, obs)}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// PopularComposers lists the provider's popular composers.
func (c *Client) PopularComposers(ctx context.Context) ([]domain.Composer, error) {
	var result composersResponse
	_, err := c.base.Get(ctx, popularComposersPath, func(r *resty.Request) {
		r.SetHeader("Accept", "application/json").SetResult(&result)
	})
	if err != nil {
		return nil, fmt.Errorf("listing composers: %w", err)
	}
	if !result.Status.ok() {
		return nil, fmt.Errorf("listing composers: %w: %s", domain.ErrInvalidResponse, result.Status.Error)
	}

	composers := make([]domain.Composer, 0, len(result.Composers))
	for i := range result.Composers {
		if result.Composers[i].ID == "" {
			continue
		}
		composers = append(composers, result.Composers[i].toDomain())
	}

	return composers, nil
}

// Works lists every catalogued work of a composer. A missing composer yields
// an empty list.
func (c *Client) Works(ctx context.Context, composerID string) ([]domain.ComposerWork, error) {
	composerID = strings.TrimSpace(composerID)
	if composerID == "" {
		return nil, fmt.Errorf("listing works: %w: empty composer id", domain.ErrInvalidResponse)
	}

	var result worksResponse
	_, err := c.base.Get(ctx, worksPath, func(r *resty.Request) {
		r.SetPathParam("id", composerID).
			SetHeader("Accept", "application/json").
			SetResult(&result)
	})
	if err != nil {
		return nil, fmt.Errorf("listing works for composer %s: %w", composerID, err)
	}
	if !result.Status.ok() {
		c.base.Logger().Warn("works lookup unsuccessful",
			zap.String("composer_id", composerID),
			zap.String("error", result.Status.Error),
		)

		return nil, fmt.Errorf("listing works for composer %s: %w", composerID, domain.ErrInvalidResponse)
	}

	works := make([]domain.ComposerWork, 0, len(result.Works))
	for i := range result.Works {
		works = append(works, result.Works[i].toDomain())
	}

	return works, nil
}

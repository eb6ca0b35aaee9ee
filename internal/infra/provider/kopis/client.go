// Package kopis implements the ticketing catalog adapter (XML API).
package kopis

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
	"classichub-service/internal/infra/provider"
)

// Name is the provider identifier.
const Name = "kopis"

// CredentialParam is the query parameter carrying the API key.
const CredentialParam = "service"

const (
	listPath     = "/pblprfr"
	detailPath   = "/pblprfr/{id}"
	facilityPath = "/prfplc/{id}"
)

// Client implements domain.PerformanceCatalog.
type Client struct {
	base   *provider.Base
	apiKey string
	now    func() time.Time
}

// New creates a catalog client. apiKey may be empty when BaseURL points at
// the relay, which injects the credential itself.
func New(cfg provider.ClientConfig, apiKey string, logger *zap.Logger, obs provider.Observer) *Client {
	return &Client{
		base:   provider.NewBase(Name, cfg, logger, obs),
		apiKey: apiKey,
		now:    time.Now,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return Name
}

// List runs a listing query. Transport and shape failures are returned.
func (c *Client) List(ctx context.Context, q domain.PerformanceQuery) ([]*domain.Performance, error) {
	q.Normalize(c.now())

	resp, err := c.base.Get(ctx, listPath, func(r *resty.Request) {
		c.credential(r)
		r.SetQueryParams(map[string]string{
			"stdate": q.From.Format(domain.QueryDateLayout),
			"eddate": q.To.Format(domain.QueryDateLayout),
			"cpage":  strconv.Itoa(q.Page),
			"rows":   strconv.Itoa(q.PageSize),
			"shcate": q.Genre,
		})
		if code, ok := queryStateCodes[q.Status]; ok {
			r.SetQueryParam("prfstate", code)
		}
	})
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Performance{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing performances: %w", err)
	}

	var result listResponse
	if err := decode(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("listing performances: %w", err)
	}

	now := c.now()
	out := make([]*domain.Performance, 0, len(result.Items))
	for _, item := range result.Items {
		if item.ErrorCode != "" && item.ErrorCode != "00" {
			return nil, fmt.Errorf("listing performances: %w: code %s %s",
				domain.ErrInvalidResponse, item.ErrorCode, item.ErrorMsg)
		}
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		out = append(out, item.toDomain(now))
	}

	c.base.Logger().Debug("performances listed",
		zap.String("key", q.Key()),
		zap.Int("count", len(out)),
	)

	return out, nil
}

// Detail returns the enriched record for id, or nil when unavailable.
func (c *Client) Detail(ctx context.Context, id string) (*domain.Performance, error) {
	resp, err := c.base.Get(ctx, detailPath, func(r *resty.Request) {
		c.credential(r)
		r.SetPathParam("id", id)
	})
	if err != nil {
		if provider.IsExpected(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("performance detail %s: %w", id, err)
	}

	var result detailResponse
	if err := decode(resp.Body(), &result); err != nil || len(result.Items) == 0 || result.Items[0].ID == "" {
		c.base.Logger().Warn("unusable detail payload", zap.String("id", id), zap.Error(err))

		return nil, nil
	}

	return result.Items[0].toDomain(c.now()), nil
}

// Facility returns the venue coordinates, or nil when unknown.
func (c *Client) Facility(ctx context.Context, facilityID string) (*domain.Coordinates, error) {
	resp, err := c.base.Get(ctx, facilityPath, func(r *resty.Request) {
		c.credential(r)
		r.SetPathParam("id", facilityID)
	})
	if err != nil {
		if provider.IsExpected(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("facility %s: %w", facilityID, err)
	}

	var result facilityResponse
	if err := decode(resp.Body(), &result); err != nil || len(result.Items) == 0 {
		c.base.Logger().Warn("unusable facility payload", zap.String("facility_id", facilityID), zap.Error(err))

		return nil, nil
	}

	return result.Items[0].coordinates(), nil
}

func (c *Client) credential(r *resty.Request) {
	if c.apiKey != "" {
		r.SetQueryParam(CredentialParam, c.apiKey)
	}
}

func decode(body []byte, v any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return fmt.Errorf("%w: empty body", domain.ErrInvalidResponse)
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidResponse, err)
	}

	return nil
}

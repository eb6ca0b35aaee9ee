// Package provider provides HTTP client utilities shared by the upstream adapters.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"classichub-service/internal/domain"
)

// ClientConfig holds configuration for a provider client.
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Retry     RetryConfig
	CB        CBConfig
	RateLimit RateLimitConfig
}

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// RateLimitConfig caps outgoing requests per provider. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Observer receives per-call metrics. Implemented by metrics.Collector.
type Observer interface {
	ObserveProviderCall(provider, result string, d time.Duration)
	SetBreakerState(provider string, state int)
}

// StatusError is an unexpected non-2xx upstream status.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.Code)
}

// NewRestyClient creates a resty client that retries on network errors and 5xx.
func NewRestyClient(cfg ClientConfig) *resty.Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}

			return r.StatusCode() >= 500
		})
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return client
}

// NewCircuitBreaker creates a circuit breaker for a provider. State changes
// are logged and published to obs.
func NewCircuitBreaker[T any](name string, cfg CBConfig, logger *zap.Logger, obs Observer) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if obs != nil {
				obs.SetBreakerState(name, int(to))
			}
		},
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}

// Base bundles what every adapter needs: a resty client, a breaker, an
// optional rate limiter and logging.
type Base struct {
	name    string
	client  *resty.Client
	cb      *gobreaker.CircuitBreaker[*resty.Response]
	limiter *rate.Limiter
	obs     Observer
	logger  *zap.Logger
}

// NewBase creates the shared client parts for provider name.
func NewBase(name string, cfg ClientConfig, logger *zap.Logger, obs Observer) *Base {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("provider", name))

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	return &Base{
		name:    name,
		client:  NewRestyClient(cfg),
		cb:      NewCircuitBreaker[*resty.Response](name, cfg.CB, logger, obs),
		limiter: limiter,
		obs:     obs,
		logger:  logger,
	}
}

// Name returns the provider identifier.
func (b *Base) Name() string {
	return b.name
}

// Logger returns the provider-scoped logger.
func (b *Base) Logger() *zap.Logger {
	return b.logger
}

// HTTPClient exposes the underlying http.Client, mainly for transport mocks.
func (b *Base) HTTPClient() *http.Client {
	return b.client.GetClient()
}

// BreakerState returns the current circuit breaker state.
func (b *Base) BreakerState() gobreaker.State {
	return b.cb.State()
}

// Get issues a GET for path through the rate limiter and circuit breaker.
// Transport errors and 5xx count against the breaker; 404 is reported as
// domain.ErrNotFound and other 4xx as *StatusError.
func (b *Base) Get(ctx context.Context, path string, prepare func(*resty.Request)) (*resty.Response, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s rate limit: %w", b.name, err)
		}
	}

	start := time.Now()
	resp, err := b.cb.Execute(func() (*resty.Response, error) {
		req := b.client.R().SetContext(ctx)
		if prepare != nil {
			prepare(req)
		}

		r, err := req.Get(path)
		if err != nil {
			return nil, err
		}
		if r.StatusCode() >= 500 {
			return nil, &StatusError{Provider: b.name, Code: r.StatusCode()}
		}

		return r, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		b.observe("error", elapsed)
		b.logger.Warn("provider call failed",
			zap.String("path", path),
			zap.Error(err),
			zap.String("state", b.cb.State().String()),
		)

		return nil, fmt.Errorf("calling %s: %w", b.name, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		b.observe("not_found", elapsed)

		return nil, domain.ErrNotFound
	case resp.IsError():
		b.observe("client_error", elapsed)
		b.logger.Warn("provider rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
		)

		return nil, &StatusError{Provider: b.name, Code: resp.StatusCode()}
	}

	b.observe("ok", elapsed)

	return resp, nil
}

func (b *Base) observe(result string, d time.Duration) {
	if b.obs != nil {
		b.obs.ObserveProviderCall(b.name, result, d)
	}
}

// IsExpected reports whether err is a failure adapters swallow into an empty
// result: missing records, rejected requests and bad payloads.
func IsExpected(err error) bool {
	var se *StatusError
	if errors.As(err, &se) && se.Code < 500 {
		return true
	}

	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidResponse)
}

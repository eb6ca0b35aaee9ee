// Package registry wires every upstream adapter from configuration.
package registry

import (
	"go.uber.org/zap"

	"classichub-service/internal/config"
	"classichub-service/internal/domain"
	"classichub-service/internal/infra/provider"
	"classichub-service/internal/infra/provider/audiodb"
	"classichub-service/internal/infra/provider/kopis"
	"classichub-service/internal/infra/provider/naver"
	"classichub-service/internal/infra/provider/openopus"
	"classichub-service/internal/infra/provider/rss"
	"classichub-service/internal/infra/provider/wikipedia"
	"classichub-service/internal/infra/provider/youtube"
)

// Providers groups the adapters by role.
type Providers struct {
	Catalog      domain.PerformanceCatalog
	Metadata     domain.ArtistMetadataProvider
	Encyclopedia domain.EncyclopediaProvider
	Composers    domain.ComposerProvider
	Videos       domain.VideoProvider
	News         []domain.NewsProvider
}

// NewProviders creates all configured provider clients.
// This is a factory function that centralizes provider initialization
// while maintaining dependency injection principles.
//
// Parameters:
//   - cfg: Provider configuration containing endpoints, timeouts, retry, circuit breaker and rate limit settings
//   - creds: server-held provider credentials
//   - logger: Zap logger instance for structured logging
//   - obs: optional metrics observer, may be nil
func NewProviders(cfg config.ProviderConfig, creds config.CredentialsConfig, logger *zap.Logger, obs provider.Observer) *Providers {
	news := []domain.NewsProvider{
		naver.New(ClientConfig(cfg.Naver), creds.NaverID, creds.NaverSecret, logger, obs),
	}
	if len(cfg.RSS.Feeds) > 0 {
		news = append(news, rss.New(ClientConfig(cfg.RSS.ProviderEndpoint), cfg.RSS.Feeds, logger, obs))
	}

	return &Providers{
		Catalog:      kopis.New(ClientConfig(cfg.Kopis), creds.KopisKey, logger, obs),
		Metadata:     audiodb.New(ClientConfig(cfg.AudioDB), creds.AudioDBKey, logger, obs),
		Encyclopedia: wikipedia.New(ClientConfig(cfg.Wikipedia), logger, obs),
		Composers:    openopus.New(ClientConfig(cfg.OpenOpus), logger, obs),
		Videos:       youtube.New(ClientConfig(cfg.YouTube), creds.YouTubeKey, logger, obs),
		News:         news,
	}
}

// ClientConfig maps an endpoint section onto the shared client settings.
func ClientConfig(ep config.ProviderEndpoint) provider.ClientConfig {
	return provider.ClientConfig{
		BaseURL:   ep.BaseURL,
		Timeout:   ep.Timeout,
		UserAgent: "classichub-service/1.0",
		Retry: provider.RetryConfig{
			MaxAttempts: ep.Retry.MaxAttempts,
			WaitTime:    ep.Retry.WaitTime,
			MaxWaitTime: ep.Retry.MaxWaitTime,
		},
		CB: provider.CBConfig{
			MaxRequests:  ep.CB.MaxRequests,
			Interval:     ep.CB.Interval,
			Timeout:      ep.CB.Timeout,
			FailureRatio: ep.CB.FailureRatio,
		},
		RateLimit: provider.RateLimitConfig{
			RPS:   ep.RateLimit.RPS,
			Burst: ep.RateLimit.Burst,
		},
	}
}

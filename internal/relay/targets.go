package relay

import (
	"classichub-service/internal/config"
	"classichub-service/internal/infra/provider/audiodb"
	"classichub-service/internal/infra/provider/kopis"
	"classichub-service/internal/infra/provider/naver"
	"classichub-service/internal/infra/provider/openopus"
	"classichub-service/internal/infra/provider/youtube"
)

// Targets builds the relay targets for every provider that needs a secret or
// cannot be called from a browser.
func Targets(cfg config.ProviderConfig, creds config.CredentialsConfig) []Target {
	return []Target{
		{
			Name:        kopis.Name,
			BaseURL:     cfg.Kopis.BaseURL,
			Query:       map[string]string{kopis.CredentialParam: creds.KopisKey},
			ContentType: "application/xml; charset=utf-8",
		},
		{
			Name:        audiodb.Name,
			BaseURL:     cfg.AudioDB.BaseURL,
			PathPrefix:  creds.AudioDBKey,
			ContentType: "application/json",
		},
		{
			Name:        youtube.Name,
			BaseURL:     cfg.YouTube.BaseURL,
			Query:       map[string]string{youtube.CredentialParam: creds.YouTubeKey},
			ContentType: "application/json",
		},
		{
			Name:    naver.Name,
			BaseURL: cfg.Naver.BaseURL,
			Headers: map[string]string{
				naver.HeaderClientID:     creds.NaverID,
				naver.HeaderClientSecret: creds.NaverSecret,
			},
			ContentType: "application/json",
		},
		{
			Name:        openopus.Name,
			BaseURL:     cfg.OpenOpus.BaseURL,
			ContentType: "application/json",
		},
	}
}

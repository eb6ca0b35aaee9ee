// Package config provides application configuration management using Viper.
// Configuration is loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Relay       RelayConfig       `mapstructure:"relay"`
	Store       StoreConfig       `mapstructure:"store"`
	Rotation    RotationConfig    `mapstructure:"rotation"`
	Warmer      WarmerConfig      `mapstructure:"warmer"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Sentry      SentryConfig      `mapstructure:"sentry"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cache       CacheConfig       `mapstructure:"cache"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"` // development, staging, production
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	BodyLimit      int           `mapstructure:"body_limit"`
	Timezone       string        `mapstructure:"timezone"` // dates in queries and the weekly rotation
}

// Location loads Timezone, falling back to UTC for an unknown zone.
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ProviderConfig holds external provider settings.
type ProviderConfig struct {
	Kopis     ProviderEndpoint `mapstructure:"kopis"`
	AudioDB   ProviderEndpoint `mapstructure:"audiodb"`
	Wikipedia ProviderEndpoint `mapstructure:"wikipedia"`
	OpenOpus  ProviderEndpoint `mapstructure:"openopus"`
	YouTube   ProviderEndpoint `mapstructure:"youtube"`
	Naver     ProviderEndpoint `mapstructure:"naver"`
	RSS       RSSEndpoint      `mapstructure:"rss"`
}

// ProviderEndpoint holds a single provider's configuration.
type ProviderEndpoint struct {
	BaseURL   string          `mapstructure:"base_url"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Retry     RetryConfig     `mapstructure:"retry"`
	CB        CBConfig        `mapstructure:"circuit_breaker"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RSSEndpoint is a ProviderEndpoint without a base URL plus the feed list.
type RSSEndpoint struct {
	ProviderEndpoint `mapstructure:",squash"`
	Feeds            []string `mapstructure:"feeds"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// RateLimitConfig caps outgoing calls per provider. Zero rps disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// CredentialsConfig holds the server-side provider secrets. They are only
// ever attached to outgoing requests, never returned to clients.
type CredentialsConfig struct {
	KopisKey    string `mapstructure:"kopis_key"`
	AudioDBKey  string `mapstructure:"audiodb_key"`
	YouTubeKey  string `mapstructure:"youtube_key"`
	NaverID     string `mapstructure:"naver_client_id"`
	NaverSecret string `mapstructure:"naver_client_secret"`
}

// RelayConfig holds proxy relay settings.
type RelayConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Timeout  time.Duration `mapstructure:"timeout"`
	SafeURL  bool          `mapstructure:"safe_url"` // block private and loopback upstream addresses
	MaxBytes int64         `mapstructure:"max_bytes"`
}

// StoreConfig holds per-domain cache TTLs. A non-positive TTL never expires.
type StoreConfig struct {
	PerformanceTTL time.Duration `mapstructure:"performance_ttl"`
	DetailTTL      time.Duration `mapstructure:"detail_ttl"`
	FacilityTTL    time.Duration `mapstructure:"facility_ttl"`
	ArtistTTL      time.Duration `mapstructure:"artist_ttl"`
	ComposerTTL    time.Duration `mapstructure:"composer_ttl"`
	NewsTTL        time.Duration `mapstructure:"news_ttl"`
	VideoTTL       time.Duration `mapstructure:"video_ttl"`
	Concurrency    int           `mapstructure:"concurrency"` // assembly fan-out limit
}

// RotationConfig holds weekly rotation settings.
type RotationConfig struct {
	Epoch string `mapstructure:"epoch"` // YYYY-MM-DD
	Size  int    `mapstructure:"size"`
}

// EpochTime parses Epoch in loc.
func (c RotationConfig) EpochTime(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, c.Epoch, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing rotation epoch %q: %w", c.Epoch, err)
	}

	return t, nil
}

// WarmerConfig holds background cache warmer settings.
type WarmerConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	OnStartup bool          `mapstructure:"on_startup"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for the snapshot tier and locking.
// When disabled, stores are process-local and the warmer locks in memory.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds snapshot tier settings.
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "classichub-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.request_timeout", "20s")
	v.SetDefault("app.body_limit", 64<<10)
	v.SetDefault("app.timezone", "Asia/Seoul")

	// Database defaults
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "classichub")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", "5m")

	// Provider defaults
	setProviderDefaults(v, "kopis", "http://www.kopis.or.kr/openApi/restful", 2)
	setProviderDefaults(v, "audiodb", "https://www.theaudiodb.com/api/v1/json", 2)
	setProviderDefaults(v, "wikipedia", "https://ko.wikipedia.org/api/rest_v1", 5)
	setProviderDefaults(v, "openopus", "https://api.openopus.org", 5)
	setProviderDefaults(v, "youtube", "https://www.googleapis.com/youtube/v3", 2)
	setProviderDefaults(v, "naver", "https://openapi.naver.com", 5)
	setProviderDefaults(v, "rss", "", 2)
	v.SetDefault("provider.rss.feeds", []string{})

	// Credentials have no defaults; set them through APP_CREDENTIALS_* env vars.
	v.SetDefault("credentials.kopis_key", "")
	v.SetDefault("credentials.audiodb_key", "")
	v.SetDefault("credentials.youtube_key", "")
	v.SetDefault("credentials.naver_client_id", "")
	v.SetDefault("credentials.naver_client_secret", "")

	// Relay defaults
	v.SetDefault("relay.enabled", true)
	v.SetDefault("relay.timeout", "15s")
	v.SetDefault("relay.safe_url", false)
	v.SetDefault("relay.max_bytes", 5<<20)

	// Store defaults
	v.SetDefault("store.performance_ttl", "5m")
	v.SetDefault("store.detail_ttl", "30m")
	v.SetDefault("store.facility_ttl", "24h")
	v.SetDefault("store.artist_ttl", "6h")
	v.SetDefault("store.composer_ttl", "24h")
	v.SetDefault("store.news_ttl", "10m")
	v.SetDefault("store.video_ttl", "1h")
	v.SetDefault("store.concurrency", 4)

	// Rotation defaults
	v.SetDefault("rotation.epoch", "2024-01-01")
	v.SetDefault("rotation.size", 4)

	// Warmer defaults
	v.SetDefault("warmer.enabled", true)
	v.SetDefault("warmer.interval", "5m")
	v.SetDefault("warmer.on_startup", true)
	v.SetDefault("warmer.timeout", "45s")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.key_prefix", "classichub")
}

func setProviderDefaults(v *viper.Viper, name, baseURL string, rps float64) {
	prefix := "provider." + name + "."
	v.SetDefault(prefix+"base_url", baseURL)
	v.SetDefault(prefix+"timeout", "10s")
	v.SetDefault(prefix+"retry.max_attempts", 2)
	v.SetDefault(prefix+"retry.wait_time", "500ms")
	v.SetDefault(prefix+"retry.max_wait_time", "3s")
	v.SetDefault(prefix+"circuit_breaker.max_requests", 3)
	v.SetDefault(prefix+"circuit_breaker.interval", "60s")
	v.SetDefault(prefix+"circuit_breaker.timeout", "30s")
	v.SetDefault(prefix+"circuit_breaker.failure_ratio", 0.5)
	v.SetDefault(prefix+"rate_limit.rps", rps)
	v.SetDefault(prefix+"rate_limit.burst", int(rps)*2)
}

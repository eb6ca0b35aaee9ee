package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "classichub-service", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 20*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, "Asia/Seoul", cfg.App.Location().String())
	assert.Equal(t, "http://www.kopis.or.kr/openApi/restful", cfg.Provider.Kopis.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Provider.Kopis.Timeout)
	assert.Equal(t, 2, cfg.Provider.Kopis.Retry.MaxAttempts)
	assert.Equal(t, 0.5, cfg.Provider.Naver.CB.FailureRatio)
	assert.Equal(t, 5.0, cfg.Provider.Wikipedia.RateLimit.RPS)
	assert.Equal(t, 10, cfg.Provider.Wikipedia.RateLimit.Burst)
	assert.Empty(t, cfg.Provider.RSS.Feeds)
	assert.Equal(t, 5*time.Minute, cfg.Store.PerformanceTTL)
	assert.Equal(t, 24*time.Hour, cfg.Store.FacilityTTL)
	assert.Equal(t, 4, cfg.Rotation.Size)
	assert.Equal(t, "classichub", cfg.Cache.KeyPrefix)
	assert.Empty(t, cfg.Credentials.KopisKey)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9000
provider:
  kopis:
    base_url: http://localhost:8081/kopis
  rss:
    timeout: 3s
    feeds:
      - https://magazine.example.com/rss
store:
  news_ttl: 30s
`), 0o600))

	t.Setenv("APP_APP_PORT", "9100")
	t.Setenv("APP_CREDENTIALS_KOPIS_KEY", "secret-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, "secret-key", cfg.Credentials.KopisKey)
	assert.Equal(t, "http://localhost:8081/kopis", cfg.Provider.Kopis.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Provider.RSS.Timeout)
	assert.Equal(t, []string{"https://magazine.example.com/rss"}, cfg.Provider.RSS.Feeds)
	assert.Equal(t, 30*time.Second, cfg.Store.NewsTTL)
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestRotationConfig_EpochTime(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)

	epoch, err := RotationConfig{Epoch: "2024-01-01"}.EpochTime(seoul)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, epoch.Weekday())
	assert.Equal(t, seoul, epoch.Location())

	_, err = RotationConfig{Epoch: "01/01/2024"}.EpochTime(seoul)
	assert.Error(t, err)
}

func TestAppConfig_Location_Unknown(t *testing.T) {
	assert.Equal(t, time.UTC, AppConfig{Timezone: "Mars/Olympus"}.Location())
}

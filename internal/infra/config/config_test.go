package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyViper(t *testing.T) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(t.TempDir())
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(emptyViper(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.ImageModel)
	assert.Equal(t, "veo-3.1-fast-generate-preview", cfg.Gemini.VideoModel)
	assert.Equal(t, "1:1", cfg.Media.ImageAspectRatio)
	assert.Equal(t, "720p", cfg.Media.VideoResolution)
	assert.Equal(t, "16:9", cfg.Media.VideoAspectRatio)
	assert.Equal(t, 10*time.Second, cfg.Media.PollInterval)
	assert.Equal(t, 20*time.Minute, cfg.Media.PollTimeout)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "memory", cfg.Panel.Backend)
	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  address: ":9090"
media:
  poll_interval: 2s
  poll_max_attempts: 30
panel:
  backend: redis
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	cfg, err := load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 2*time.Second, cfg.Media.PollInterval)
	assert.Equal(t, 30, cfg.Media.PollMaxAttempts)
	assert.Equal(t, "redis", cfg.Panel.Backend)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("NANOSTUDIO_SERVER_ADDRESS", ":7070")
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("NANOSTUDIO_CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := load(emptyViper(t))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
}

func TestLoad_PrefixedKeyWins(t *testing.T) {
	t.Setenv("NANOSTUDIO_GEMINI_API_KEY", "prefixed")
	t.Setenv("GEMINI_API_KEY", "plain")

	cfg, err := load(emptyViper(t))
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Gemini.APIKey)
}

func TestValidate(t *testing.T) {
	cfg, err := load(emptyViper(t))
	require.NoError(t, err)

	cfg.Storage.Backend = "s3"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Bucket = "videos"
	assert.NoError(t, cfg.Validate())

	cfg.Panel.Backend = "etcd"
	assert.Error(t, cfg.Validate())
}

func TestValidate_WriteTimeoutCoversRemoteCall(t *testing.T) {
	cfg, err := load(emptyViper(t))
	require.NoError(t, err)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.HTTPClient.ResponseTimeout)
	assert.NoError(t, cfg.Validate())

	cfg.Server.WriteTimeout = 60 * time.Second
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write_timeout")

	cfg.Server.WriteTimeout = 0
	assert.NoError(t, cfg.Validate())
}

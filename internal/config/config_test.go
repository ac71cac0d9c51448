package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paykit.yaml")
	data := []byte(`
api:
  url: http://localhost:12111/v1
  publishable_key: pk_test_123
  timeout: 5s
  max_retries: -1
webhook:
  secret: whsec_abc
  tolerance: 1m
logging:
  level: debug
  encoding: console
`)
	require.NoError(t, os.WriteFile(path, data, 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:12111/v1", cfg.API.URL)
	assert.Equal(t, "pk_test_123", cfg.API.PublishableKey)
	assert.Equal(t, -1, cfg.API.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.GetAPITimeout())
	assert.Equal(t, time.Minute, cfg.GetWebhookTolerance())
	assert.Equal(t, "whsec_abc", cfg.Webhook.Secret)
	// untouched keys keep their defaults
	assert.Equal(t, ":4242", cfg.Webhook.Addr)
	assert.Equal(t, time.Hour, cfg.GetIdempotencyTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "paykit.yaml")
	cfg := DefaultConfig()
	cfg.API.PublishableKey = "pk_test_saved"

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAYKIT_API_URL", "http://stripe-mock:12111/v1")
	t.Setenv("PAYKIT_PUBLISHABLE_KEY", "pk_test_env")
	t.Setenv("PAYKIT_MAX_RETRIES", "7")
	t.Setenv("PAYKIT_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("PAYKIT_REDIS_ADDR", "localhost:6379")
	t.Setenv("PAYKIT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://stripe-mock:12111/v1", cfg.API.URL)
	assert.Equal(t, "pk_test_env", cfg.API.PublishableKey)
	assert.Equal(t, 7, cfg.API.MaxRetries)
	assert.Equal(t, "whsec_env", cfg.Webhook.Secret)
	assert.Equal(t, "localhost:6379", cfg.Idempotency.RedisAddr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestEnvOverrides_InvalidRetriesIgnored(t *testing.T) {
	t.Setenv("PAYKIT_MAX_RETRIES", "lots")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, 3, cfg.API.MaxRetries)
}

func TestEnvOverrides_WinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paykit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  publishable_key: pk_file\n"), 0600))
	t.Setenv("PAYKIT_PUBLISHABLE_KEY", "pk_env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "pk_env", cfg.API.PublishableKey)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("PAYKIT_WEBHOOK_ADDR=:9999\n"), 0600))
	t.Setenv("PAYKIT_WEBHOOK_ADDR", "")
	require.NoError(t, os.Unsetenv("PAYKIT_WEBHOOK_ADDR"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Webhook.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty url", mutate: func(c *Config) { c.API.URL = "" }, wantErr: "api url"},
		{name: "bad retries", mutate: func(c *Config) { c.API.MaxRetries = -2 }, wantErr: "max_retries"},
		{name: "bad timeout", mutate: func(c *Config) { c.API.Timeout = "soon" }, wantErr: "api.timeout"},
		{name: "bad ttl", mutate: func(c *Config) { c.Idempotency.TTL = "1 hour" }, wantErr: "idempotency.ttl"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "log level"},
		{name: "bad encoding", mutate: func(c *Config) { c.Logging.Encoding = "xml" }, wantErr: "log encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurationGettersFallBack(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.GetAPITimeout())
	assert.Equal(t, 5*time.Minute, cfg.GetWebhookTolerance())
	assert.Equal(t, time.Hour, cfg.GetIdempotencyTTL())
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()

	logger, err := cfg.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = cfg.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

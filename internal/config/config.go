// Package config loads CLI configuration from a YAML file, an optional
// .env file and PAYKIT_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all paykit CLI configuration.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Idempotency IdempotencyConfig `yaml:"idempotency"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// APIConfig configures the HTTP API client.
type APIConfig struct {
	URL            string `yaml:"url"`
	PublishableKey string `yaml:"publishable_key"`
	APIVersion     string `yaml:"api_version,omitempty"`
	Timeout        string `yaml:"timeout"`
	MaxRetries     int    `yaml:"max_retries"`
}

// WebhookConfig configures the webhook receiver.
type WebhookConfig struct {
	Addr         string `yaml:"addr"`
	Path         string `yaml:"path"`
	Secret       string `yaml:"secret"`
	Tolerance    string `yaml:"tolerance"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// IdempotencyConfig configures confirm deduplication.
// An empty RedisAddr keeps results in memory.
type IdempotencyConfig struct {
	RedisAddr string `yaml:"redis_addr,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
	TTL       string `yaml:"ttl"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:        "https://api.stripe.com/v1",
			Timeout:    "30s",
			MaxRetries: 3,
		},
		Webhook: WebhookConfig{
			Addr:         ":4242",
			Path:         "/webhooks",
			Tolerance:    "5m",
			MaxBodyBytes: 64 << 10,
		},
		Idempotency: IdempotencyConfig{
			TTL: "1h",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults. Environment overrides are applied
// afterwards in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAYKIT_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("PAYKIT_PUBLISHABLE_KEY"); v != "" {
		c.API.PublishableKey = v
	}
	if v := os.Getenv("PAYKIT_API_VERSION"); v != "" {
		c.API.APIVersion = v
	}
	if v := os.Getenv("PAYKIT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.API.MaxRetries = n
		}
	}

	if v := os.Getenv("PAYKIT_WEBHOOK_ADDR"); v != "" {
		c.Webhook.Addr = v
	}
	if v := os.Getenv("PAYKIT_WEBHOOK_SECRET"); v != "" {
		c.Webhook.Secret = v
	}

	if v := os.Getenv("PAYKIT_REDIS_ADDR"); v != "" {
		c.Idempotency.RedisAddr = v
	}

	if v := os.Getenv("PAYKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetAPITimeout returns the API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetWebhookTolerance returns the signature tolerance as a duration.
func (c *Config) GetWebhookTolerance() time.Duration {
	d, err := time.ParseDuration(c.Webhook.Tolerance)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// GetIdempotencyTTL returns the confirm cache TTL as a duration.
func (c *Config) GetIdempotencyTTL() time.Duration {
	d, err := time.ParseDuration(c.Idempotency.TTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// Validate validates the configuration.
// Only settings every command needs are checked here; commands check the
// credentials they use themselves.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api url not configured")
	}
	if c.API.MaxRetries < -1 {
		return fmt.Errorf("invalid max_retries: %d", c.API.MaxRetries)
	}
	for name, value := range map[string]string{
		"api.timeout":       c.API.Timeout,
		"webhook.tolerance": c.Webhook.Tolerance,
		"idempotency.ttl":   c.Idempotency.TTL,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.Logging.Encoding != "json" && c.Logging.Encoding != "console" {
		return fmt.Errorf("invalid log encoding: %s (valid: json, console)", c.Logging.Encoding)
	}
	return nil
}

// NewLogger builds a production zap logger from the logging config.
// verbose forces debug level.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = c.Logging.Encoding
	if config.Encoding == "" {
		config.Encoding = "json"
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

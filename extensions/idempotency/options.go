package idempotency

import (
	"time"

	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit"
)

// config holds the configuration for IdempotentClient.
type config struct {
	ttl          time.Duration
	store        ConfirmationStore
	keyGenerator KeyGenerator
	decoder      *paykit.Decoder
	logger       *zap.Logger
}

// Option configures an IdempotentClient.
type Option func(*config)

// WithTTL sets the cache TTL for successful confirmations.
//
// Only applies when using the default InMemoryStore.
// If WithStore is also specified, this option is ignored
// (configure TTL on your custom store instead).
//
// Default: 10 minutes
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithStore sets a custom ConfirmationStore implementation.
//
// Use this for shared backends like Redis.
// When specified, WithTTL is ignored (configure TTL on your store).
func WithStore(store ConfirmationStore) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithKeyGenerator sets a custom key generation function.
//
// The key must uniquely identify a confirmation attempt to prevent
// false positive deduplication.
func WithKeyGenerator(gen KeyGenerator) Option {
	return func(c *config) {
		c.keyGenerator = gen
	}
}

// WithDecoder sets the decoder used to rebuild cached intents.
// It should match the decoder of the wrapped client.
func WithDecoder(decoder *paykit.Decoder) Option {
	return func(c *config) {
		c.decoder = decoder
	}
}

// WithLogger logs cache hits and waits at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

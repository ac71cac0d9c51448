package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit"
)

// Operations used in idempotency keys
const (
	OperationConfirmPaymentIntent = "confirm_payment_intent"
	OperationConfirmSetupIntent   = "confirm_setup_intent"
)

// IdempotentClient wraps a paykit.APIClient with confirmation idempotency.
//
// It intercepts ConfirmPaymentIntent and ConfirmSetupIntent to check for
// cached results before calling the API. All other methods delegate
// directly to the wrapped client.
type IdempotentClient struct {
	inner        paykit.APIClient
	store        ConfirmationStore
	keyGenerator KeyGenerator
	decoder      *paykit.Decoder
	logger       *zap.Logger
}

// Wrap creates an IdempotentClient that wraps the given client.
//
// Default configuration:
//   - InMemoryStore with 10-minute TTL
//   - SHA256 key generator
//   - paykit.DefaultDecoder for cached intents
func Wrap(client paykit.APIClient, opts ...Option) *IdempotentClient {
	cfg := &config{
		ttl:          10 * time.Minute,
		keyGenerator: DefaultKeyGenerator,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	store := cfg.store
	if store == nil {
		store = NewInMemoryStore(cfg.ttl)
	}
	decoder := cfg.decoder
	if decoder == nil {
		decoder = paykit.DefaultDecoder
	}
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &IdempotentClient{
		inner:        client,
		store:        store,
		keyGenerator: cfg.keyGenerator,
		decoder:      decoder,
		logger:       logger,
	}
}

// ConfirmPaymentIntent confirms a payment intent at most once per key.
// The key is also sent upstream as the request's Idempotency-Key.
func (c *IdempotentClient) ConfirmPaymentIntent(ctx context.Context, params *paykit.ConfirmPaymentIntentParams) (*paykit.PaymentIntent, error) {
	if params == nil {
		return c.inner.ConfirmPaymentIntent(ctx, params)
	}

	key := c.key(OperationConfirmPaymentIntent, params.IdempotencyKey, params)
	return once(ctx, c, key,
		func() (*paykit.PaymentIntent, []byte, error) {
			upstream := *params
			upstream.IdempotencyKey = key
			pi, err := c.inner.ConfirmPaymentIntent(ctx, &upstream)
			if err != nil {
				return nil, nil, err
			}
			if pi == nil {
				return nil, nil, fmt.Errorf("%w: empty payment intent", paykit.ErrUnexpectedResponse)
			}
			raw, err := json.Marshal(pi.RawFields())
			return pi, raw, err
		},
		c.decoder.ParsePaymentIntent,
	)
}

// ConfirmSetupIntent confirms a setup intent at most once per key.
func (c *IdempotentClient) ConfirmSetupIntent(ctx context.Context, params *paykit.ConfirmSetupIntentParams) (*paykit.SetupIntent, error) {
	if params == nil {
		return c.inner.ConfirmSetupIntent(ctx, params)
	}

	key := c.key(OperationConfirmSetupIntent, params.IdempotencyKey, params)
	return once(ctx, c, key,
		func() (*paykit.SetupIntent, []byte, error) {
			upstream := *params
			upstream.IdempotencyKey = key
			si, err := c.inner.ConfirmSetupIntent(ctx, &upstream)
			if err != nil {
				return nil, nil, err
			}
			if si == nil {
				return nil, nil, fmt.Errorf("%w: empty setup intent", paykit.ErrUnexpectedResponse)
			}
			raw, err := json.Marshal(si.RawFields())
			return si, raw, err
		},
		c.decoder.ParseSetupIntent,
	)
}

// RetrievePaymentIntent delegates to the wrapped client.
// Retrieval is read-only and needs no idempotency.
func (c *IdempotentClient) RetrievePaymentIntent(ctx context.Context, clientSecret string) (*paykit.PaymentIntent, error) {
	return c.inner.RetrievePaymentIntent(ctx, clientSecret)
}

// RetrieveSetupIntent delegates to the wrapped client.
func (c *IdempotentClient) RetrieveSetupIntent(ctx context.Context, clientSecret string) (*paykit.SetupIntent, error) {
	return c.inner.RetrieveSetupIntent(ctx, clientSecret)
}

// CreatePaymentMethod delegates to the wrapped client.
func (c *IdempotentClient) CreatePaymentMethod(ctx context.Context, params *paykit.PaymentMethodParams) (*paykit.PaymentMethod, error) {
	return c.inner.CreatePaymentMethod(ctx, params)
}

// Inner returns the wrapped client for direct access.
func (c *IdempotentClient) Inner() paykit.APIClient {
	return c.inner
}

func (c *IdempotentClient) key(operation, explicit string, params paykit.FormParams) string {
	if explicit != "" {
		return operation + ":" + explicit
	}
	return c.keyGenerator(operation, params.Encode())
}

// once runs confirm for the owner of key and serves everyone else from the store.
func once[T any](ctx context.Context, c *IdempotentClient, key string, confirm func() (T, []byte, error), decode func([]byte) (T, error)) (T, error) {
	var zero T

	status, cached, err := c.store.CheckAndMark(ctx, key)
	if err != nil {
		return zero, fmt.Errorf("failed to check idempotency store: %w", err)
	}

	switch status {
	case StatusCached:
		c.logger.Debug("confirmation served from cache", zap.String("key", key))
		return decode(cached)

	case StatusInFlight:
		c.logger.Debug("waiting for in-flight confirmation", zap.String("key", key))
		result, err := c.store.WaitForResult(ctx, key)
		if err != nil {
			return zero, fmt.Errorf("failed waiting for in-flight confirmation: %w", err)
		}
		if result != nil {
			return decode(result)
		}
		// The owner failed; compete for the slot again
		return once(ctx, c, key, confirm, decode)

	case StatusNotFound:
		// This request owns the in-flight slot
	}

	// Releasing the slot must survive caller cancellation
	storeCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			if failErr := c.store.Fail(storeCtx, key); failErr != nil {
				c.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(failErr))
			}
			panic(r)
		}
	}()

	value, raw, err := confirm()
	if err != nil {
		if failErr := c.store.Fail(storeCtx, key); failErr != nil {
			c.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(failErr))
		}
		return zero, err
	}

	if err := c.store.Complete(storeCtx, key, raw); err != nil {
		c.logger.Warn("failed to cache confirmation", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// Ensure IdempotentClient implements paykit.APIClient
var _ paykit.APIClient = (*IdempotentClient)(nil)

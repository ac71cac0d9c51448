package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix       = "paykit:idempotency:"
	defaultInFlightTTL       = 2 * time.Minute
	defaultRedisPollInterval = 50 * time.Millisecond
)

// RedisStore is a ConfirmationStore shared through Redis.
//
// The in-flight marker is a SETNX key with its own TTL so a crashed owner
// cannot block a key forever. Waiters poll until the result appears or the
// marker disappears.
type RedisStore struct {
	client       redis.UniversalClient
	ttl          time.Duration
	inFlightTTL  time.Duration
	pollInterval time.Duration
	prefix       string
}

// RedisOption configures a RedisStore
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key the store writes
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithInFlightTTL bounds how long an unfinished confirmation blocks its key
func WithInFlightTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.inFlightTTL = ttl
	}
}

// WithPollInterval sets how often waiters check for a result
func WithPollInterval(interval time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.pollInterval = interval
	}
}

// NewRedisStore creates a store caching results for ttl
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:       client,
		ttl:          ttl,
		inFlightTTL:  defaultInFlightTTL,
		pollInterval: defaultRedisPollInterval,
		prefix:       defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) resultKey(key string) string   { return s.prefix + "result:" + key }
func (s *RedisStore) inFlightKey(key string) string { return s.prefix + "inflight:" + key }

// CheckAndMark checks for a cached result, then tries to claim the in-flight marker.
func (s *RedisStore) CheckAndMark(ctx context.Context, key string) (Status, []byte, error) {
	result, found, err := s.get(ctx, key)
	if err != nil {
		return StatusNotFound, nil, err
	}
	if found {
		return StatusCached, result, nil
	}

	acquired, err := s.client.SetNX(ctx, s.inFlightKey(key), "1", s.inFlightTTL).Result()
	if err != nil {
		return StatusNotFound, nil, fmt.Errorf("failed to mark confirmation in flight: %w", err)
	}
	if !acquired {
		return StatusInFlight, nil, nil
	}

	// A result may have landed between the read and the claim.
	result, found, err = s.get(ctx, key)
	if err != nil {
		return StatusNotFound, nil, err
	}
	if found {
		s.client.Del(ctx, s.inFlightKey(key))
		return StatusCached, result, nil
	}
	return StatusNotFound, nil, nil
}

// WaitForResult polls until the result is stored or the in-flight marker is gone.
func (s *RedisStore) WaitForResult(ctx context.Context, key string) ([]byte, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		result, found, err := s.get(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if found {
			return result, nil
		}

		pending, err := s.client.Exists(ctx, s.inFlightKey(key)).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to check in-flight marker: %w", err)
		}
		if pending == 0 {
			// Complete may have landed between the two reads
			result, found, err := s.get(ctx, key)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, err
			}
			if found {
				return result, nil
			}
			return nil, nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Complete stores the result and releases the in-flight marker in one transaction.
func (s *RedisStore) Complete(ctx context.Context, key string, result []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.resultKey(key), result, s.ttl)
		pipe.Del(ctx, s.inFlightKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store confirmation result: %w", err)
	}
	return nil
}

// Fail releases the in-flight marker without storing a result.
func (s *RedisStore) Fail(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.inFlightKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight marker: %w", err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := s.client.Get(ctx, s.resultKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read confirmation result: %w", err)
	}
	return result, true, nil
}

// Ensure RedisStore implements ConfirmationStore
var _ ConfirmationStore = (*RedisStore)(nil)

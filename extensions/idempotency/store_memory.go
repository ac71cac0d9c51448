package idempotency

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore provides an in-memory implementation of ConfirmationStore.
//
// This implementation is suitable for single-instance deployments where
// cache state doesn't need to be shared across processes. For shared
// deployments, use RedisStore.
type InMemoryStore struct {
	mu       sync.Mutex
	results  map[string][]byte
	expiry   map[string]time.Time
	inFlight map[string]chan struct{}
	ttl      time.Duration
}

// NewInMemoryStore creates a new in-memory confirmation store with the specified TTL.
func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		results:  make(map[string][]byte),
		expiry:   make(map[string]time.Time),
		inFlight: make(map[string]chan struct{}),
		ttl:      ttl,
	}
}

// CheckAndMark atomically checks the cache and marks the key as in-flight if needed.
func (s *InMemoryStore) CheckAndMark(_ context.Context, key string) (Status, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result, ok := s.getLocked(key); ok {
		return StatusCached, result, nil
	}

	if _, exists := s.inFlight[key]; exists {
		return StatusInFlight, nil, nil
	}

	s.inFlight[key] = make(chan struct{})
	return StatusNotFound, nil, nil
}

// WaitForResult waits for an in-flight request to complete, respecting context cancellation.
func (s *InMemoryStore) WaitForResult(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	done, exists := s.inFlight[key]
	if !exists {
		result, _ := s.getLocked(key)
		s.mu.Unlock()
		return result, nil
	}
	s.mu.Unlock()

	select {
	case <-done:
		s.mu.Lock()
		defer s.mu.Unlock()
		result, _ := s.getLocked(key)
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// getLocked returns an unexpired result. Must be called with lock held.
func (s *InMemoryStore) getLocked(key string) ([]byte, bool) {
	expiry, exists := s.expiry[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(expiry) {
		delete(s.results, key)
		delete(s.expiry, key)
		return nil, false
	}
	return s.results[key], true
}

// Complete caches the result and signals any waiting goroutines.
func (s *InMemoryStore) Complete(_ context.Context, key string, result []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[key] = result
	s.expiry[key] = time.Now().Add(s.ttl)
	s.release(key)
	s.cleanupExpiredLocked()
	return nil
}

// Fail removes the in-flight marker without caching a result,
// allowing the confirmation to be retried.
func (s *InMemoryStore) Fail(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.release(key)
	return nil
}

// release closes and removes the in-flight channel. Must be called with lock held.
func (s *InMemoryStore) release(key string) {
	if done, exists := s.inFlight[key]; exists {
		delete(s.inFlight, key)
		close(done)
	}
}

// cleanupExpiredLocked removes expired entries. Must be called with lock held.
func (s *InMemoryStore) cleanupExpiredLocked() {
	now := time.Now()
	for key, expiry := range s.expiry {
		if now.After(expiry) {
			delete(s.results, key)
			delete(s.expiry, key)
		}
	}
}

// Ensure InMemoryStore implements ConfirmationStore
var _ ConfirmationStore = (*InMemoryStore)(nil)

package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"

	"github.com/google/uuid"
)

// Status represents the result of checking the store.
type Status int

const (
	// StatusNotFound means no cached result and no in-flight request.
	StatusNotFound Status = iota
	// StatusCached means a cached result was found.
	StatusCached
	// StatusInFlight means another request is currently confirming this intent.
	StatusInFlight
)

func (s Status) String() string {
	switch s {
	case StatusCached:
		return "cached"
	case StatusInFlight:
		return "in_flight"
	default:
		return "not_found"
	}
}

// ConfirmationStore defines the interface for confirmation idempotency storage.
// Implementations must be safe for concurrent use.
//
// Results are opaque bytes so the interface can be backed by in-memory maps
// and by shared stores alike.
type ConfirmationStore interface {
	// CheckAndMark atomically checks the store and marks the key as in-flight if needed.
	//
	// Returns:
	//   - StatusCached + result: A cached result exists, return it immediately
	//   - StatusInFlight + nil: Another request is processing, call WaitForResult
	//   - StatusNotFound + nil: This request should proceed (now marked in-flight)
	CheckAndMark(ctx context.Context, key string) (Status, []byte, error)

	// WaitForResult waits for an in-flight request to complete, respecting context cancellation.
	//
	// Returns:
	//   - The cached result if the in-flight request succeeded
	//   - nil if the in-flight request failed (caller should retry)
	//   - Error if the context was cancelled or the store failed
	WaitForResult(ctx context.Context, key string) ([]byte, error)

	// Complete caches the result and releases the in-flight marker.
	Complete(ctx context.Context, key string, result []byte) error

	// Fail removes the in-flight marker without caching a result,
	// signaling waiters that they should retry.
	Fail(ctx context.Context, key string) error
}

// KeyGenerator generates unique keys for confirmation deduplication.
// operation is OperationConfirmPaymentIntent or OperationConfirmSetupIntent.
type KeyGenerator func(operation string, form url.Values) string

// DefaultKeyGenerator hashes the operation and the form-encoded params.
// url.Values encodes with sorted keys, so equal params give equal keys.
func DefaultKeyGenerator(operation string, form url.Values) string {
	hash := sha256.Sum256([]byte(operation + "\n" + form.Encode()))
	return hex.EncodeToString(hash[:])
}

// NewKey returns a random idempotency key for callers that want one
// confirmation per user action rather than per params.
func NewKey() string {
	return uuid.NewString()
}

// Package idempotency deduplicates intent confirmations as an opt-in
// extension for paykit API clients.
//
// # Overview
//
// Confirming an intent is not safe to repeat blindly: a retry after a
// timeout can race the first attempt and surface a second next action to
// the customer. This package wraps any paykit.APIClient so that identical
// confirmations share one upstream request and one result.
//
// # Usage
//
// Basic usage with the default in-memory store:
//
//	base := paykithttp.NewClientWithKey("pk_test_...")
//	client := idempotency.Wrap(base)
//
// Custom TTL:
//
//	client := idempotency.Wrap(base,
//	    idempotency.WithTTL(30 * time.Minute),
//	)
//
// Shared store across processes:
//
//	store := idempotency.NewRedisStore(redisClient, 10*time.Minute)
//	client := idempotency.Wrap(base,
//	    idempotency.WithStore(store),
//	)
//
// # How It Works
//
// 1. On Confirm*, a key is derived from the operation and the encoded params
// (SHA256 by default), or taken from the caller's IdempotencyKey
// 2. The store atomically checks for a cached result or an in-flight request
// 3. If cached: the stored intent is decoded and returned without a request
// 4. If in-flight: wait for the other request, then return its result
// 5. Otherwise: confirm upstream with the key as Idempotency-Key, then cache
//
// Failed confirmations are NOT cached, allowing legitimate retries.
// Retrieve and CreatePaymentMethod calls pass straight through.
package idempotency

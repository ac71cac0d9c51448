package idempotency

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"
)

func TestDefaultKeyGenerator(t *testing.T) {
	form1 := url.Values{"client_secret": {"pi_1_secret_a"}, "payment_method": {"pm_1"}}
	form2 := url.Values{"client_secret": {"pi_1_secret_a"}, "payment_method": {"pm_2"}}

	key1 := DefaultKeyGenerator(OperationConfirmPaymentIntent, form1)
	key2 := DefaultKeyGenerator(OperationConfirmPaymentIntent, form2)
	key3 := DefaultKeyGenerator(OperationConfirmPaymentIntent, form1)
	key4 := DefaultKeyGenerator(OperationConfirmSetupIntent, form1)

	// Same params should produce same key
	if key1 != key3 {
		t.Errorf("Expected same params to produce same key, got %s and %s", key1, key3)
	}

	// Different params should produce different key
	if key1 == key2 {
		t.Errorf("Expected different params to produce different keys")
	}

	// Different operation should produce different key
	if key1 == key4 {
		t.Errorf("Expected different operations to produce different keys")
	}

	// Key should be hex string (64 chars for SHA256)
	if len(key1) != 64 {
		t.Errorf("Expected key to be 64 hex chars, got %d", len(key1))
	}
}

func TestNewKey(t *testing.T) {
	if NewKey() == NewKey() {
		t.Error("Expected random keys to differ")
	}
}

func TestInMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) ConfirmationStore {
		return NewInMemoryStore(5 * time.Minute)
	})
}

func TestInMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(50 * time.Millisecond)
	key := "expiry-test"

	status, _, _ := store.CheckAndMark(ctx, key)
	if status != StatusNotFound {
		t.Fatalf("Expected StatusNotFound, got %v", status)
	}
	_ = store.Complete(ctx, key, []byte(`{"id":"pi_1"}`))

	// Should be cached immediately
	status, result, _ := store.CheckAndMark(ctx, key)
	if status != StatusCached {
		t.Error("Expected StatusCached immediately after complete")
	}
	if result == nil {
		t.Error("Expected non-nil result")
	}

	// Wait for expiry
	time.Sleep(60 * time.Millisecond)

	// Should be expired (treated as NotFound)
	status, _, _ = store.CheckAndMark(ctx, key)
	if status != StatusNotFound {
		t.Errorf("Expected StatusNotFound after expiry, got %v", status)
	}
	_ = store.Fail(ctx, key)
}

func TestInMemoryStore_AtomicCheckAndMark(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(5 * time.Minute)
	key := "atomic-test"

	var wg sync.WaitGroup
	notFoundCount := 0
	inFlightCount := 0
	var mu sync.Mutex

	// Launch 10 goroutines simultaneously
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, _ := store.CheckAndMark(ctx, key)
			mu.Lock()
			if status == StatusNotFound {
				notFoundCount++
			} else if status == StatusInFlight {
				inFlightCount++
			}
			mu.Unlock()
		}()
	}

	wg.Wait()

	// Exactly one should have gotten NotFound (owns the slot)
	if notFoundCount != 1 {
		t.Errorf("Expected exactly 1 NotFound, got %d", notFoundCount)
	}
	if inFlightCount != 9 {
		t.Errorf("Expected 9 InFlight, got %d", inFlightCount)
	}
}

// runStoreSuite checks the behavior every ConfirmationStore shares
func runStoreSuite(t *testing.T, newStore func(t *testing.T) ConfirmationStore) {
	t.Run("CheckAndMark cached", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		key := "cached-test"

		status, result, err := store.CheckAndMark(ctx, key)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if status != StatusNotFound {
			t.Errorf("Expected StatusNotFound, got %v", status)
		}
		if result != nil {
			t.Error("Expected nil result for NotFound")
		}

		if err := store.Complete(ctx, key, []byte("intent-1")); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		status, result, _ = store.CheckAndMark(ctx, key)
		if status != StatusCached {
			t.Errorf("Expected StatusCached, got %v", status)
		}
		if string(result) != "intent-1" {
			t.Errorf("Expected cached result intent-1, got %q", result)
		}
	})

	t.Run("CheckAndMark in flight", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		key := "inflight-test"

		status1, _, _ := store.CheckAndMark(ctx, key)
		if status1 != StatusNotFound {
			t.Errorf("Expected StatusNotFound, got %v", status1)
		}
		status2, _, _ := store.CheckAndMark(ctx, key)
		if status2 != StatusInFlight {
			t.Errorf("Expected StatusInFlight, got %v", status2)
		}
	})

	t.Run("Fail allows retry", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		key := "fail-test"

		status, _, _ := store.CheckAndMark(ctx, key)
		if status != StatusNotFound {
			t.Fatalf("Expected StatusNotFound, got %v", status)
		}
		if err := store.Fail(ctx, key); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		status, _, _ = store.CheckAndMark(ctx, key)
		if status != StatusNotFound {
			t.Errorf("Expected StatusNotFound after fail (retry allowed), got %v", status)
		}
	})

	t.Run("WaitForResult success", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		key := "wait-test"

		_, _, _ = store.CheckAndMark(ctx, key)

		var wg sync.WaitGroup
		results := make([][]byte, 3)
		errs := make([]error, 3)
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx], errs[idx] = store.WaitForResult(ctx, key)
			}(i)
		}

		// Give waiters time to start
		time.Sleep(20 * time.Millisecond)
		_ = store.Complete(ctx, key, []byte("shared"))
		wg.Wait()

		for i := 0; i < 3; i++ {
			if errs[i] != nil {
				t.Errorf("Waiter %d got error: %v", i, errs[i])
				continue
			}
			if string(results[i]) != "shared" {
				t.Errorf("Waiter %d got %q", i, results[i])
			}
		}
	})

	t.Run("WaitForResult after failure", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		key := "wait-fail-test"

		_, _, _ = store.CheckAndMark(ctx, key)

		var result []byte
		var err error
		done := make(chan struct{})
		go func() {
			defer close(done)
			result, err = store.WaitForResult(ctx, key)
		}()

		time.Sleep(20 * time.Millisecond)
		_ = store.Fail(ctx, key)
		<-done

		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
		if result != nil {
			t.Errorf("Expected nil result after failure, got %q", result)
		}
	})

	t.Run("WaitForResult context cancelled", func(t *testing.T) {
		store := newStore(t)
		key := "cancel-test"

		_, _, _ = store.CheckAndMark(context.Background(), key)

		ctx, cancel := context.WithCancel(context.Background())
		var waitErr error
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, waitErr = store.WaitForResult(ctx, key)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()
		<-done

		if waitErr != context.Canceled {
			t.Errorf("Expected context.Canceled, got %v", waitErr)
		}
		_ = store.Fail(context.Background(), key)
	})
}

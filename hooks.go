package paykit

import (
	"context"
	"time"
)

// ============================================================================
// Request Hook Context Types
// ============================================================================

// RequestContext contains information passed to request hooks
type RequestContext struct {
	Ctx            context.Context
	Method         string
	Path           string
	IdempotencyKey string
	Timestamp      time.Time
}

// ResponseContext contains a completed request and its outcome
type ResponseContext struct {
	RequestContext
	StatusCode int
	RequestID  string
	Duration   time.Duration
}

// FailureContext contains a failed request and its error
type FailureContext struct {
	RequestContext
	Error    error
	Duration time.Duration
}

// ============================================================================
// Hook Function Types
// ============================================================================

// BeforeRequestHook runs before a request is sent.
// Returning an error aborts the request with that error.
type BeforeRequestHook func(RequestContext) error

// AfterResponseHook runs after any response is received, successful or not
type AfterResponseHook func(ResponseContext)

// OnFailureHook runs when a request fails before a response is decoded
type OnFailureHook func(FailureContext)

package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrHandlerFailed wraps errors returned by event handlers
var ErrHandlerFailed = errors.New("webhook handler failed")

// Receiver verifies and dispatches raw webhook deliveries
type Receiver struct {
	secret     string
	tolerance  time.Duration
	dispatcher *Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ReceiverOption configures a Receiver
type ReceiverOption func(*Receiver)

// WithTolerance sets the accepted signature age (0 disables the check)
func WithTolerance(tolerance time.Duration) ReceiverOption {
	return func(r *Receiver) {
		r.tolerance = tolerance
	}
}

// WithClock overrides the receiver clock
func WithClock(now func() time.Time) ReceiverOption {
	return func(r *Receiver) {
		r.now = now
	}
}

// WithReceiverLogger sets the receiver logger
func WithReceiverLogger(logger *zap.Logger) ReceiverOption {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReceiver creates a receiver for the given endpoint secret
func NewReceiver(secret string, dispatcher *Dispatcher, opts ...ReceiverOption) *Receiver {
	r := &Receiver{
		secret:     secret,
		tolerance:  DefaultTolerance,
		dispatcher: dispatcher,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Receive verifies the signature, parses the event and dispatches it.
//
// Errors wrap ErrInvalidSignature, ErrTimestampOutsideTolerance or
// ErrMalformedEvent when the delivery is rejected, and ErrHandlerFailed
// when it was accepted but a handler failed.
func (r *Receiver) Receive(ctx context.Context, payload []byte, signatureHeader string) (*Event, error) {
	if err := VerifySignature(payload, signatureHeader, r.secret, r.tolerance, r.now()); err != nil {
		r.logger.Info("rejected webhook delivery", zap.Error(err))
		return nil, err
	}

	event, err := ParseEvent(payload)
	if err != nil {
		r.logger.Info("rejected webhook delivery", zap.Error(err))
		return nil, err
	}

	r.logger.Debug("received webhook event",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.Bool("livemode", event.Livemode),
	)

	if r.dispatcher == nil {
		return event, nil
	}
	if err := r.dispatcher.Dispatch(ctx, event); err != nil {
		return event, fmt.Errorf("%w: %w", ErrHandlerFailed, err)
	}
	return event, nil
}

// IsRejection reports whether err means the delivery itself was invalid
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTimestampOutsideTolerance) ||
		errors.Is(err, ErrMalformedEvent)
}

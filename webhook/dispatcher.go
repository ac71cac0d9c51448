package webhook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit"
)

// Handler handles one event
type Handler func(ctx context.Context, event *Event) error

// ActionHandler handles the next action of a requires_action event
type ActionHandler func(ctx context.Context, event *Event, action *paykit.IntentAction) error

// Dispatcher routes events to handlers by type.
// Handlers may be registered while events are being dispatched.
type Dispatcher struct {
	mu             sync.RWMutex
	handlers       map[string][]Handler
	actionHandlers []ActionHandler
	fallback       Handler
	decoder        *paykit.Decoder
	logger         *zap.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithDecoder sets the decoder used for intents in event payloads
func WithDecoder(decoder *paykit.Decoder) DispatcherOption {
	return func(d *Dispatcher) {
		if decoder != nil {
			d.decoder = decoder
		}
	}
}

// WithLogger sets the dispatcher logger
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string][]Handler),
		decoder:  paykit.DefaultDecoder,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On registers a handler for an event type
func (d *Dispatcher) On(eventType string, handler Handler) *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
	return d
}

// OnRequiresAction registers a handler for every requires_action event
// whose intent decodes with a next action.
func (d *Dispatcher) OnRequiresAction(handler ActionHandler) *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actionHandlers = append(d.actionHandlers, handler)
	return d
}

// OnUnhandled registers the handler for events no other handler took
func (d *Dispatcher) OnUnhandled(handler Handler) *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fallback = handler
	return d
}

// Dispatch runs every handler matching the event and joins their errors
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) error {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event.Type]...)
	actionHandlers := append([]ActionHandler(nil), d.actionHandlers...)
	fallback := d.fallback
	d.mu.RUnlock()

	var errs []error
	handled := false

	for _, handler := range handlers {
		handled = true
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if event.RequiresAction() && len(actionHandlers) > 0 {
		if action := event.NextAction(d.decoder); action != nil {
			handled = true
			d.logger.Debug("dispatching next action",
				zap.String("event_id", event.ID),
				zap.String("kind", action.Kind().String()),
				zap.String("declared_type", action.DeclaredType()),
			)
			for _, handler := range actionHandlers {
				if err := handler(ctx, event, action); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	if !handled {
		if fallback == nil {
			d.logger.Debug("ignoring unhandled event", zap.String("event_id", event.ID), zap.String("type", event.Type))
			return nil
		}
		if err := fallback(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		d.logger.Warn("webhook handler failed",
			zap.String("event_id", event.ID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return fmt.Errorf("failed to handle %s: %w", event.Type, err)
	}
	return nil
}

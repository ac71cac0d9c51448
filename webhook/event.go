// Package webhook verifies, parses and dispatches API webhook events.
//
// Intent events carry the full intent object, so a requires_action event
// can be routed straight to the code that drives the next action:
//
//	dispatcher := webhook.NewDispatcher(logger)
//	dispatcher.OnRequiresAction(func(ctx context.Context, e *webhook.Event, a *paykit.IntentAction) error {
//	    ...
//	})
//	receiver := webhook.NewReceiver(secret, dispatcher)
package webhook

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/types"
)

// Event types with first-class support
const (
	EventPaymentIntentRequiresAction = "payment_intent.requires_action"
	EventPaymentIntentSucceeded      = "payment_intent.succeeded"
	EventPaymentIntentPaymentFailed  = "payment_intent.payment_failed"
	EventPaymentIntentCanceled       = "payment_intent.canceled"
	EventSetupIntentRequiresAction   = "setup_intent.requires_action"
	EventSetupIntentSucceeded        = "setup_intent.succeeded"
	EventSetupIntentSetupFailed      = "setup_intent.setup_failed"
)

// Object types found in data.object
const (
	ObjectPaymentIntent = "payment_intent"
	ObjectSetupIntent   = "setup_intent"
)

// ErrMalformedEvent is returned for payloads that are not event objects
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is a webhook event envelope
type Event struct {
	ID         string
	Type       string
	Created    time.Time
	Livemode   bool
	APIVersion string

	// Object is data.object, the resource the event is about
	Object types.Fields

	rawFields types.Fields
}

// ParseEvent decodes an event payload. It fails when id, type or
// data.object is missing.
func ParseEvent(payload []byte) (*Event, error) {
	fields, err := types.ParseFields(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	id, ok := fields.String("id")
	if !ok {
		return nil, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}
	eventType, ok := fields.String("type")
	if !ok {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}
	data, ok := fields.Mapping("data")
	if !ok {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	object, ok := data.Mapping("object")
	if !ok {
		return nil, fmt.Errorf("%w: missing data.object", ErrMalformedEvent)
	}

	event := &Event{
		ID:        id,
		Type:      eventType,
		Livemode:  fields.Bool("livemode", false),
		Object:    object,
		rawFields: fields,
	}
	event.Created, _ = fields.Date("created")
	event.APIVersion, _ = fields.String("api_version")
	return event, nil
}

// ObjectType returns data.object.object, e.g. "payment_intent"
func (e *Event) ObjectType() string {
	s, _ := e.Object.String("object")
	return s
}

// RequiresAction reports whether the event announces a pending next action
func (e *Event) RequiresAction() bool {
	return strings.HasSuffix(e.Type, ".requires_action")
}

// PaymentIntent decodes data.object as a payment intent
func (e *Event) PaymentIntent(d *paykit.Decoder) (*paykit.PaymentIntent, bool) {
	if e.ObjectType() != ObjectPaymentIntent {
		return nil, false
	}
	pi := d.DecodePaymentIntent(e.Object)
	return pi, pi != nil
}

// SetupIntent decodes data.object as a setup intent
func (e *Event) SetupIntent(d *paykit.Decoder) (*paykit.SetupIntent, bool) {
	if e.ObjectType() != ObjectSetupIntent {
		return nil, false
	}
	si := d.DecodeSetupIntent(e.Object)
	return si, si != nil
}

// NextAction decodes the next action of the intent the event is about.
// It returns nil for non-intent events and intents without a next action.
func (e *Event) NextAction(d *paykit.Decoder) *paykit.IntentAction {
	if pi, ok := e.PaymentIntent(d); ok {
		return pi.NextAction
	}
	if si, ok := e.SetupIntent(d); ok {
		return si.NextAction
	}
	return nil
}

// RawFields returns a copy of the original event object
func (e *Event) RawFields() types.Fields {
	return e.rawFields.Clone()
}

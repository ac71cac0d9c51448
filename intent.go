package paykit

import (
	"fmt"
	"time"

	"github.com/paykit-sdk/paykit/types"
)

// PaymentIntent is a payment attempt as reported by the API.
// Only the fields needed to drive confirmation and next actions are typed;
// everything else stays available through RawFields.
type PaymentIntent struct {
	ID               string
	ClientSecret     string
	Amount           int64
	Currency         string
	Status           IntentStatus
	Created          time.Time
	Livemode         bool
	PaymentMethodID  string
	Description      string
	NextAction       *IntentAction
	LastPaymentError *APIError

	rawFields types.Fields
}

// RequiresAction reports whether the customer must complete a next action
func (pi *PaymentIntent) RequiresAction() bool {
	return pi.Status == IntentStatusRequiresAction && pi.NextAction != nil
}

// RawFields returns a copy of the original response object
func (pi *PaymentIntent) RawFields() types.Fields {
	return pi.rawFields.Clone()
}

// SetupIntent saves a payment method for future payments
type SetupIntent struct {
	ID              string
	ClientSecret    string
	Status          IntentStatus
	Usage           SetupIntentUsage
	Created         time.Time
	Livemode        bool
	PaymentMethodID string
	NextAction      *IntentAction
	LastSetupError  *APIError

	rawFields types.Fields
}

// RequiresAction reports whether the customer must complete a next action
func (si *SetupIntent) RequiresAction() bool {
	return si.Status == IntentStatusRequiresAction && si.NextAction != nil
}

// RawFields returns a copy of the original response object
func (si *SetupIntent) RawFields() types.Fields {
	return si.rawFields.Clone()
}

// DecodePaymentIntent decodes a payment intent object.
// It returns nil when id or status is missing.
func (d *Decoder) DecodePaymentIntent(fields types.Fields) *PaymentIntent {
	id, ok := fields.String("id")
	if !ok {
		return nil
	}
	status, ok := fields.String("status")
	if !ok {
		return nil
	}

	pi := &PaymentIntent{
		ID:        id,
		Status:    IntentStatusFromString(status),
		Livemode:  fields.Bool("livemode", false),
		rawFields: fields.Clone(),
	}
	pi.ClientSecret, _ = fields.String("client_secret")
	pi.Amount, _ = fields.Int64("amount")
	pi.Currency, _ = fields.String("currency")
	pi.Created, _ = fields.Date("created")
	pi.Description, _ = fields.String("description")
	pi.PaymentMethodID = expandableID(fields, "payment_method")

	if next, ok := fields.Mapping("next_action"); ok {
		pi.NextAction = d.Decode(next)
	}
	if lastErr, ok := fields.Mapping("last_payment_error"); ok {
		pi.LastPaymentError = DecodeAPIError(lastErr)
	}
	return pi
}

// DecodeSetupIntent decodes a setup intent object.
// It returns nil when id or status is missing.
func (d *Decoder) DecodeSetupIntent(fields types.Fields) *SetupIntent {
	id, ok := fields.String("id")
	if !ok {
		return nil
	}
	status, ok := fields.String("status")
	if !ok {
		return nil
	}

	si := &SetupIntent{
		ID:        id,
		Status:    IntentStatusFromString(status),
		Usage:     SetupIntentUsageUnknown,
		Livemode:  fields.Bool("livemode", false),
		rawFields: fields.Clone(),
	}
	si.ClientSecret, _ = fields.String("client_secret")
	si.Created, _ = fields.Date("created")
	si.PaymentMethodID = expandableID(fields, "payment_method")
	if usage, ok := fields.String("usage"); ok {
		si.Usage = SetupIntentUsageFromString(usage)
	}

	if next, ok := fields.Mapping("next_action"); ok {
		si.NextAction = d.Decode(next)
	}
	if lastErr, ok := fields.Mapping("last_setup_error"); ok {
		si.LastSetupError = DecodeAPIError(lastErr)
	}
	return si
}

// ParsePaymentIntent decodes payment intent bytes
func (d *Decoder) ParsePaymentIntent(data []byte) (*PaymentIntent, error) {
	fields, err := types.ParseFields(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment intent: %w", err)
	}
	pi := d.DecodePaymentIntent(fields)
	if pi == nil {
		return nil, fmt.Errorf("%w: not a payment intent", ErrUnexpectedResponse)
	}
	return pi, nil
}

// ParseSetupIntent decodes setup intent bytes
func (d *Decoder) ParseSetupIntent(data []byte) (*SetupIntent, error) {
	fields, err := types.ParseFields(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse setup intent: %w", err)
	}
	si := d.DecodeSetupIntent(fields)
	if si == nil {
		return nil, fmt.Errorf("%w: not a setup intent", ErrUnexpectedResponse)
	}
	return si, nil
}

// DecodePaymentIntent decodes a payment intent with DefaultDecoder
func DecodePaymentIntent(fields types.Fields) *PaymentIntent {
	return DefaultDecoder.DecodePaymentIntent(fields)
}

// DecodeSetupIntent decodes a setup intent with DefaultDecoder
func DecodeSetupIntent(fields types.Fields) *SetupIntent {
	return DefaultDecoder.DecodeSetupIntent(fields)
}

// expandableID reads a field that is either an ID string or an expanded
// object carrying an id.
func expandableID(fields types.Fields, key string) string {
	if id, ok := fields.String(key); ok {
		return id
	}
	if obj, ok := fields.Mapping(key); ok {
		id, _ := obj.String("id")
		return id
	}
	return ""
}

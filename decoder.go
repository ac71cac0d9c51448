package paykit

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit/types"
)

// Demotion reasons
const (
	DemotionPayloadMissing = "payload_missing"
	DemotionPayloadInvalid = "payload_invalid"
	DemotionSchemaInvalid  = "schema_invalid"
)

// PayloadValidator checks an action payload before it is decoded.
// A non-empty result demotes the action.
type PayloadValidator interface {
	ValidatePayload(kind ActionKind, payload types.Fields) []string
}

// DemotionContext describes an action whose declared kind was discarded
type DemotionContext struct {
	DeclaredType string
	DeclaredKind ActionKind
	Reason       string
	Errors       []string
	RawFields    types.Fields
}

// DemotionHook is called whenever a recognized action type is demoted to
// ActionKindUnknown.
type DemotionHook func(DemotionContext)

// Decoder turns action objects into IntentActions.
// It is immutable after construction and safe for concurrent use.
type Decoder struct {
	logger    *zap.Logger
	validator PayloadValidator
	hooks     []DemotionHook
}

// DecoderOption configures a Decoder
type DecoderOption func(*Decoder)

// WithLogger logs demotions at debug level
func WithLogger(logger *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDemotionHook registers a hook invoked on every demotion
func WithDemotionHook(hook DemotionHook) DecoderOption {
	return func(d *Decoder) {
		if hook != nil {
			d.hooks = append(d.hooks, hook)
		}
	}
}

// WithPayloadValidator validates payloads before the typed decoders run
func WithPayloadValidator(v PayloadValidator) DecoderOption {
	return func(d *Decoder) {
		d.validator = v
	}
}

// DefaultDecoder has no logger, hooks or validator
var DefaultDecoder = NewDecoder()

// NewDecoder creates a Decoder
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode builds an IntentAction from an action object.
//
// It returns nil when the object has no type tag. Otherwise it always
// returns an action: unrecognized types decode as ActionKindUnknown, and a
// recognized type whose payload is missing or invalid is demoted to
// ActionKindUnknown. The original object is retained in every case.
func (d *Decoder) Decode(fields types.Fields) *IntentAction {
	declared, ok := fields.String("type")
	if !ok {
		return nil
	}

	action := &IntentAction{rawFields: fields.Clone()}

	kind := ActionKindFromString(declared)
	decode, known := payloadDecoders[kind]
	if !known {
		return action
	}

	payloadFields, ok := fields.Mapping(string(kind))
	if !ok {
		d.demote(declared, kind, DemotionPayloadMissing, nil, action)
		return action
	}

	if d.validator != nil {
		if errs := d.validator.ValidatePayload(kind, payloadFields); len(errs) > 0 {
			d.demote(declared, kind, DemotionSchemaInvalid, errs, action)
			return action
		}
	}

	payload, ok := decode(payloadFields)
	if !ok {
		d.demote(declared, kind, DemotionPayloadInvalid, nil, action)
		return action
	}

	action.payload = payload
	return action
}

// Parse decodes action bytes.
// It returns ErrMissingActionType when the object has no type tag.
func (d *Decoder) Parse(data []byte) (*IntentAction, error) {
	fields, err := types.ParseFields(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse intent action: %w", err)
	}
	action := d.Decode(fields)
	if action == nil {
		return nil, ErrMissingActionType
	}
	return action, nil
}

func (d *Decoder) demote(declared string, kind ActionKind, reason string, errs []string, action *IntentAction) {
	d.logger.Debug("demoted intent action to unknown",
		zap.String("declared_type", declared),
		zap.String("declared_kind", string(kind)),
		zap.String("reason", reason),
		zap.Strings("errors", errs),
	)

	if len(d.hooks) == 0 {
		return
	}
	ctx := DemotionContext{
		DeclaredType: declared,
		DeclaredKind: kind,
		Reason:       reason,
		Errors:       errs,
		RawFields:    action.rawFields.Clone(),
	}
	for _, hook := range d.hooks {
		hook(ctx)
	}
}

package paykit

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/paykit-sdk/paykit/types"
)

// ActionKind identifies which next action an intent requires
type ActionKind string

const (
	// ActionKindUnknown covers unrecognized types and recognized types whose
	// payload could not be decoded.
	ActionKindUnknown ActionKind = "unknown"
	// ActionKindRedirectToURL asks the customer to visit a URL to authenticate
	ActionKindRedirectToURL ActionKind = "redirect_to_url"
	// ActionKindUseStripeSDK asks the SDK to run a native authentication flow
	ActionKindUseStripeSDK ActionKind = "use_stripe_sdk"
)

// actionKindsByType is the fixed lookup table for declared action types.
// Keys are lower case.
var actionKindsByType = map[string]ActionKind{
	"redirect_to_url": ActionKindRedirectToURL,
	"use_stripe_sdk":  ActionKindUseStripeSDK,
}

// ActionKindFromString maps a declared type string to its kind.
// Matching is case-insensitive; any string not in the table maps to ActionKindUnknown.
func ActionKindFromString(s string) ActionKind {
	return lookup(actionKindsByType, s, ActionKindUnknown)
}

func (k ActionKind) String() string {
	return string(k)
}

// ErrMissingActionType is returned by ParseIntentAction when the document
// carries no type tag.
var ErrMissingActionType = errors.New("intent action is missing its type")

// ActionPayload is the type-specific data of a next action.
// It is implemented only by RedirectToURL and UseStripeSDK.
type ActionPayload interface {
	// Kind returns the action kind this payload belongs to
	Kind() ActionKind
	isActionPayload()
}

// IntentAction is the decoded next action of a payment or setup intent.
//
// The kind is derived from the payload, so an IntentAction can never hold a
// kind/payload mismatch: a nil payload is ActionKindUnknown and every other
// kind carries its matching payload. Values are immutable once decoded.
type IntentAction struct {
	payload   ActionPayload
	rawFields types.Fields
}

// Kind returns the decoded kind of the action
func (a *IntentAction) Kind() ActionKind {
	if a == nil || a.payload == nil {
		return ActionKindUnknown
	}
	return a.payload.Kind()
}

// Payload returns the typed payload, or nil when the kind is unknown
func (a *IntentAction) Payload() ActionPayload {
	if a == nil {
		return nil
	}
	return a.payload
}

// RedirectToURL returns the redirect payload if the action is a redirect
func (a *IntentAction) RedirectToURL() (RedirectToURL, bool) {
	if a == nil {
		return RedirectToURL{}, false
	}
	p, ok := a.payload.(RedirectToURL)
	return p, ok
}

// UseStripeSDK returns the SDK payload if the action is a use_stripe_sdk action
func (a *IntentAction) UseStripeSDK() (UseStripeSDK, bool) {
	if a == nil {
		return UseStripeSDK{}, false
	}
	p, ok := a.payload.(UseStripeSDK)
	return p, ok
}

// DeclaredType returns the type string the server sent, verbatim
func (a *IntentAction) DeclaredType() string {
	if a == nil {
		return ""
	}
	s, _ := a.rawFields.String("type")
	return s
}

// Demoted reports whether the server declared a known kind whose payload
// failed to decode.
func (a *IntentAction) Demoted() bool {
	return a.Kind() == ActionKindUnknown && ActionKindFromString(a.DeclaredType()) != ActionKindUnknown
}

// RawFields returns a copy of the original response object
func (a *IntentAction) RawFields() types.Fields {
	if a == nil {
		return nil
	}
	return a.rawFields.Clone()
}

// MarshalJSON re-encodes the action as the server sent it
func (a *IntentAction) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.rawFields)
}

// ActionSummary is a flat, serializable view of an IntentAction
type ActionSummary struct {
	Kind          ActionKind `json:"kind" yaml:"kind"`
	DeclaredType  string     `json:"declaredType" yaml:"declaredType"`
	Demoted       bool       `json:"demoted" yaml:"demoted"`
	RedirectURL   string     `json:"redirectUrl,omitempty" yaml:"redirectUrl,omitempty"`
	ReturnURL     string     `json:"returnUrl,omitempty" yaml:"returnUrl,omitempty"`
	SDKActionType string     `json:"sdkActionType,omitempty" yaml:"sdkActionType,omitempty"`
}

// Summary flattens the action for display and transport
func (a *IntentAction) Summary() ActionSummary {
	summary := ActionSummary{
		Kind:         a.Kind(),
		DeclaredType: a.DeclaredType(),
		Demoted:      a.Demoted(),
	}
	switch p := a.Payload().(type) {
	case RedirectToURL:
		summary.RedirectURL = urlString(p.URL)
		summary.ReturnURL = urlString(p.ReturnURL)
	case UseStripeSDK:
		summary.SDKActionType = p.DeclaredType
		summary.RedirectURL = urlString(p.RedirectURL)
	}
	return summary
}

// DecodeIntentAction decodes an action object with DefaultDecoder.
// It returns nil only when the object has no type tag.
func DecodeIntentAction(fields types.Fields) *IntentAction {
	return DefaultDecoder.Decode(fields)
}

// ParseIntentAction decodes action bytes with DefaultDecoder
func ParseIntentAction(data []byte) (*IntentAction, error) {
	return DefaultDecoder.Parse(data)
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

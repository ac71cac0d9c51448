package paykit

import (
	"errors"
	"fmt"

	"github.com/paykit-sdk/paykit/types"
)

// APIError is an error object returned by the payments API
type APIError struct {
	Type        string `json:"type" yaml:"type"`
	Code        string `json:"code,omitempty" yaml:"code,omitempty"`
	DeclineCode string `json:"decline_code,omitempty" yaml:"decline_code,omitempty"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
	Param       string `json:"param,omitempty" yaml:"param,omitempty"`
	StatusCode  int    `json:"-" yaml:"-"`
	RequestID   string `json:"-" yaml:"-"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Error types
const (
	ErrTypeAPI            = "api_error"
	ErrTypeCard           = "card_error"
	ErrTypeIdempotency    = "idempotency_error"
	ErrTypeInvalidRequest = "invalid_request_error"
	ErrTypeAuthentication = "authentication_error"
	ErrTypeRateLimit      = "rate_limit_error"
)

// Common error codes
const (
	ErrCodeCardDeclined             = "card_declined"
	ErrCodeExpiredCard              = "expired_card"
	ErrCodeIncorrectCVC             = "incorrect_cvc"
	ErrCodeAuthenticationRequired   = "authentication_required"
	ErrCodePaymentIntentUnexpected  = "payment_intent_unexpected_state"
	ErrCodeSetupIntentUnexpected    = "setup_intent_unexpected_state"
	ErrCodeResourceMissing          = "resource_missing"
	ErrCodeParameterInvalidEmpty    = "parameter_invalid_empty"
	ErrCodePaymentMethodUnactivated = "payment_method_unactivated"
)

var (
	// ErrInvalidClientSecret is returned for malformed intent client secrets
	ErrInvalidClientSecret = errors.New("invalid intent client secret")
	// ErrUnexpectedResponse is returned when a successful response does not
	// decode into the expected object
	ErrUnexpectedResponse = errors.New("unexpected API response")
)

// NewAPIError creates a new API error
func NewAPIError(errType, code, message string) *APIError {
	return &APIError{
		Type:    errType,
		Code:    code,
		Message: message,
	}
}

// DecodeAPIError decodes an error object such as an intent's last_payment_error.
// It returns nil when the object has neither a type nor a message.
func DecodeAPIError(fields types.Fields) *APIError {
	errType, hasType := fields.String("type")
	message, hasMessage := fields.String("message")
	if !hasType && !hasMessage {
		return nil
	}
	if !hasType {
		errType = ErrTypeAPI
	}
	e := &APIError{Type: errType, Message: message}
	e.Code, _ = fields.String("code")
	e.DeclineCode, _ = fields.String("decline_code")
	e.Param, _ = fields.String("param")
	return e
}

// DecodeErrorResponse decodes an error response body of the form {"error": {...}}.
// Bodies that carry no error object still produce an APIError describing the status.
func DecodeErrorResponse(fields types.Fields, statusCode int) *APIError {
	var e *APIError
	if inner, ok := fields.Mapping("error"); ok {
		e = DecodeAPIError(inner)
	}
	if e == nil {
		e = &APIError{
			Type:    errorTypeForStatus(statusCode),
			Message: fmt.Sprintf("unexpected status %d", statusCode),
		}
	}
	e.StatusCode = statusCode
	return e
}

func errorTypeForStatus(statusCode int) string {
	switch {
	case statusCode == 401:
		return ErrTypeAuthentication
	case statusCode == 429:
		return ErrTypeRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrTypeInvalidRequest
	default:
		return ErrTypeAPI
	}
}

// IsAPIErrorType reports whether err is an APIError of the given type
func IsAPIErrorType(err error, errType string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == errType
}

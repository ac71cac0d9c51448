package mcp

import (
	"github.com/paykit-sdk/paykit"
)

// Tool names
const (
	ToolDecodeIntentAction    = "decode_intent_action"
	ToolRetrievePaymentIntent = "retrieve_payment_intent"
	ToolRetrieveSetupIntent   = "retrieve_setup_intent"
)

// DecodeIntentActionArgs are the arguments of decode_intent_action
type DecodeIntentActionArgs struct {
	Action map[string]interface{} `json:"action"`
}

// RetrieveIntentArgs are the arguments of the retrieve tools
type RetrieveIntentArgs struct {
	ClientSecret string `json:"client_secret"`
}

// IntentSummary is the structured result of the retrieve tools
type IntentSummary struct {
	ID             string                `json:"id" yaml:"id"`
	Object         string                `json:"object" yaml:"object"`
	Status         paykit.IntentStatus   `json:"status" yaml:"status"`
	RequiresAction bool                  `json:"requiresAction" yaml:"requiresAction"`
	NextAction     *paykit.ActionSummary `json:"nextAction,omitempty" yaml:"nextAction,omitempty"`
	LastError      *paykit.APIError      `json:"lastError,omitempty" yaml:"lastError,omitempty"`
}

// ServerOptions configures the MCP server
type ServerOptions struct {
	// Name and Version identify the server (defaults "paykit", "1.0.0")
	Name    string
	Version string

	// Decoder decodes actions passed to decode_intent_action (defaults to paykit.DefaultDecoder)
	Decoder *paykit.Decoder
}

// SummarizePaymentIntent flattens a payment intent for tool output
func SummarizePaymentIntent(pi *paykit.PaymentIntent) IntentSummary {
	summary := IntentSummary{
		ID:             pi.ID,
		Object:         "payment_intent",
		Status:         pi.Status,
		RequiresAction: pi.RequiresAction(),
		LastError:      pi.LastPaymentError,
	}
	if pi.NextAction != nil {
		action := pi.NextAction.Summary()
		summary.NextAction = &action
	}
	return summary
}

// SummarizeSetupIntent flattens a setup intent for tool output
func SummarizeSetupIntent(si *paykit.SetupIntent) IntentSummary {
	summary := IntentSummary{
		ID:             si.ID,
		Object:         "setup_intent",
		Status:         si.Status,
		RequiresAction: si.RequiresAction(),
		LastError:      si.LastSetupError,
	}
	if si.NextAction != nil {
		action := si.NextAction.Summary()
		summary.NextAction = &action
	}
	return summary
}

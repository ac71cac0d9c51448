package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/types"
)

const (
	decodeInputSchema = `{
		"type": "object",
		"properties": {
			"action": {"type": "object", "description": "A next_action object as returned by the API"}
		},
		"required": ["action"]
	}`
	retrieveInputSchema = `{
		"type": "object",
		"properties": {
			"client_secret": {"type": "string", "description": "The intent's client secret"}
		},
		"required": ["client_secret"]
	}`
)

// NewServer creates an MCP server with the paykit tools registered.
// The retrieve tools are only registered when api is non-nil.
func NewServer(api paykit.APIClient, opts ServerOptions) *mcpsdk.Server {
	name := opts.Name
	if name == "" {
		name = "paykit"
	}
	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}
	decoder := opts.Decoder
	if decoder == nil {
		decoder = paykit.DefaultDecoder
	}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolDecodeIntentAction,
		Description: "Decode an intent's next_action object and report its kind, declared type and payload summary.",
		InputSchema: json.RawMessage(decodeInputSchema),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args DecodeIntentActionArgs
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		action := decoder.Decode(types.Fields(args.Action))
		if action == nil {
			return errorResult(paykit.ErrMissingActionType), nil
		}
		return structuredResult(action.Summary())
	})

	if api == nil {
		return server
	}

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolRetrievePaymentIntent,
		Description: "Retrieve a payment intent by client secret, including its decoded next action.",
		InputSchema: json.RawMessage(retrieveInputSchema),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args RetrieveIntentArgs
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		pi, err := api.RetrievePaymentIntent(ctx, args.ClientSecret)
		if err != nil {
			return errorResult(err), nil
		}
		return structuredResult(SummarizePaymentIntent(pi))
	})

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolRetrieveSetupIntent,
		Description: "Retrieve a setup intent by client secret, including its decoded next action.",
		InputSchema: json.RawMessage(retrieveInputSchema),
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args RetrieveIntentArgs
		if err := unmarshalArgs(req, &args); err != nil {
			return errorResult(err), nil
		}
		si, err := api.RetrieveSetupIntent(ctx, args.ClientSecret)
		if err != nil {
			return errorResult(err), nil
		}
		return structuredResult(SummarizeSetupIntent(si))
	})

	return server
}

func unmarshalArgs(req *mcpsdk.CallToolRequest, v interface{}) error {
	if len(req.Params.Arguments) == 0 {
		return fmt.Errorf("arguments are required")
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("failed to unmarshal arguments: %w", err)
	}
	return nil
}

// structuredResult returns v as structured content and as JSON text
func structuredResult(v interface{}) (*mcpsdk.CallToolResult, error) {
	text, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(text)},
		},
		StructuredContent: v,
	}, nil
}

func errorResult(err error) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/types"
)

// ToolError is returned when a tool call completed with IsError set
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s failed: %s", e.Tool, e.Message)
}

// Client calls the paykit tools over a connected MCP session
type Client struct {
	session *mcpsdk.ClientSession
}

// NewClient wraps a connected session
func NewClient(session *mcpsdk.ClientSession) *Client {
	return &Client{session: session}
}

// DecodeIntentAction calls decode_intent_action
func (c *Client) DecodeIntentAction(ctx context.Context, action types.Fields) (*paykit.ActionSummary, error) {
	var summary paykit.ActionSummary
	if err := c.call(ctx, ToolDecodeIntentAction, DecodeIntentActionArgs{Action: action}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// RetrievePaymentIntent calls retrieve_payment_intent
func (c *Client) RetrievePaymentIntent(ctx context.Context, clientSecret string) (*IntentSummary, error) {
	var summary IntentSummary
	if err := c.call(ctx, ToolRetrievePaymentIntent, RetrieveIntentArgs{ClientSecret: clientSecret}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// RetrieveSetupIntent calls retrieve_setup_intent
func (c *Client) RetrieveSetupIntent(ctx context.Context, clientSecret string) (*IntentSummary, error) {
	var summary IntentSummary
	if err := c.call(ctx, ToolRetrieveSetupIntent, RetrieveIntentArgs{ClientSecret: clientSecret}, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// call invokes a tool and decodes its JSON text result into out
func (c *Client) call(ctx context.Context, tool string, args interface{}, out interface{}) error {
	result, err := c.session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", tool, err)
	}

	text := firstText(result)
	if result.IsError {
		return &ToolError{Tool: tool, Message: text}
	}
	if text == "" {
		return errors.New("tool returned no text content")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", tool, err)
	}
	return nil
}

func firstText(result *mcpsdk.CallToolResult) string {
	for _, item := range result.Content {
		if textContent, ok := item.(*mcpsdk.TextContent); ok {
			return textContent.Text
		}
	}
	return ""
}

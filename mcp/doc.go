// Package mcp exposes intent decoding and retrieval as MCP (Model Context
// Protocol) tools, and provides a typed client for those tools.
//
// # Server Usage
//
//	api := paykithttp.NewClientWithKey("pk_test_...")
//	server := mcp.NewServer(api, mcp.ServerOptions{})
//	_ = server.Run(ctx, &mcpsdk.StdioTransport{})
//
// # Client Usage
//
//	mcpClient := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "agent", Version: "1.0.0"}, nil)
//	session, _ := mcpClient.Connect(ctx, transport, nil)
//	client := mcp.NewClient(session)
//	summary, err := client.DecodeIntentAction(ctx, actionFields)
//
// # Tools
//
//   - decode_intent_action: decodes a next_action object into an ActionSummary
//   - retrieve_payment_intent: fetches a payment intent by client secret
//   - retrieve_setup_intent: fetches a setup intent by client secret
package mcp

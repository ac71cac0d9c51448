// Package http provides the HTTP transport for the payments API.
// It authenticates with a publishable key, form-encodes request params,
// retries rate-limited requests and decodes responses into paykit types.
package http

import (
	"github.com/paykit-sdk/paykit"
)

var _ paykit.APIClient = (*HTTPAPIClient)(nil)

// NewClient creates a new HTTP API client
func NewClient(config *ClientConfig) *HTTPAPIClient {
	return NewHTTPAPIClient(config)
}

// NewClientWithKey creates a client for the default API URL
func NewClientWithKey(publishableKey string) *HTTPAPIClient {
	return NewHTTPAPIClient(&ClientConfig{PublishableKey: publishableKey})
}

// Package echo mounts webhook receivers on Echo servers.
package echo

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit/webhook"
)

// DefaultMaxBodyBytes caps webhook payloads
const DefaultMaxBodyBytes int64 = 64 << 10

// WebhookHandlerOptions is the options for the WebhookHandler.
type WebhookHandlerOptions struct {
	MaxBodyBytes int64
	Logger       *zap.Logger
}

// Options is the type for the options for the WebhookHandler.
type Options func(*WebhookHandlerOptions)

// WithMaxBodyBytes is an option for the WebhookHandler to set the payload size limit.
func WithMaxBodyBytes(n int64) Options {
	return func(options *WebhookHandlerOptions) {
		options.MaxBodyBytes = n
	}
}

// WithLogger is an option for the WebhookHandler to set the logger.
func WithLogger(logger *zap.Logger) Options {
	return func(options *WebhookHandlerOptions) {
		options.Logger = logger
	}
}

// WebhookHandler verifies and dispatches deliveries through receiver.
// Status codes match the gin adapter.
func WebhookHandler(receiver *webhook.Receiver, opts ...Options) echo.HandlerFunc {
	options := &WebhookHandlerOptions{
		MaxBodyBytes: DefaultMaxBodyBytes,
		Logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return func(c echo.Context) error {
		req := c.Request()
		body, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, options.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "payload too large"})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "failed to read body"})
		}

		event, err := receiver.Receive(req.Context(), body, req.Header.Get(webhook.SignatureHeader))
		switch {
		case err == nil:
			return c.JSON(http.StatusOK, echo.Map{"received": true, "id": event.ID})
		case webhook.IsRejection(err):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		default:
			options.Logger.Error("webhook handling failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "handler failed"})
		}
	}
}

// Register mounts the handler at path on e
func Register(e *echo.Echo, path string, receiver *webhook.Receiver, opts ...Options) {
	e.POST(path, WebhookHandler(receiver, opts...))
}

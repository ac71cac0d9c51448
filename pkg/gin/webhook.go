// Package gin mounts webhook receivers on Gin routers.
package gin

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
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
//
// It answers 200 once the event was handled, 400 for rejected deliveries
// (bad signature, stale timestamp, malformed event), 413 when the body
// exceeds MaxBodyBytes and 500 when a handler failed so the sender retries.
func WebhookHandler(receiver *webhook.Receiver, opts ...Options) gin.HandlerFunc {
	options := &WebhookHandlerOptions{
		MaxBodyBytes: DefaultMaxBodyBytes,
		Logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, options.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		event, err := receiver.Receive(c.Request.Context(), body, c.GetHeader(webhook.SignatureHeader))
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"received": true, "id": event.ID})
		case webhook.IsRejection(err):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			options.Logger.Error("webhook handling failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "handler failed"})
		}
	}
}

// Register mounts the handler at path on router
func Register(router gin.IRouter, path string, receiver *webhook.Receiver, opts ...Options) {
	router.POST(path, WebhookHandler(receiver, opts...))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit"
	ginwebhook "github.com/paykit-sdk/paykit/pkg/gin"
	"github.com/paykit-sdk/paykit/webhook"
)

const shutdownTimeout = 10 * time.Second

func newServeWebhooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-webhooks",
		Short: "Receive signed webhook events and log required next actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := a.webhookRouter()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              a.cfg.Webhook.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening for webhooks",
					zap.String("addr", srv.Addr),
					zap.String("path", a.cfg.Webhook.Path),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("webhook server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down webhook server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down webhook server: %w", err)
			}
			return nil
		},
	}
}

// webhookRouter builds the gin engine serving the webhook endpoint.
func (a *app) webhookRouter() (*gin.Engine, error) {
	if a.cfg.Webhook.Secret == "" {
		return nil, fmt.Errorf("webhook secret not configured (set webhook.secret or PAYKIT_WEBHOOK_SECRET)")
	}
	decoder, err := a.decoder()
	if err != nil {
		return nil, err
	}

	logger := a.logger.Named("webhook")
	dispatcher := webhook.NewDispatcher(
		webhook.WithDecoder(decoder),
		webhook.WithLogger(logger),
	)
	dispatcher.OnRequiresAction(func(ctx context.Context, event *webhook.Event, action *paykit.IntentAction) error {
		summary := action.Summary()
		logger.Info("intent requires action",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("kind", summary.Kind.String()),
			zap.String("declared_type", summary.DeclaredType),
			zap.Bool("demoted", summary.Demoted),
			zap.String("redirect_url", summary.RedirectURL),
		)
		return nil
	})
	dispatcher.OnUnhandled(func(ctx context.Context, event *webhook.Event) error {
		logger.Debug("event received", zap.String("event_id", event.ID), zap.String("event_type", event.Type))
		return nil
	})

	receiver := webhook.NewReceiver(a.cfg.Webhook.Secret, dispatcher,
		webhook.WithTolerance(a.cfg.GetWebhookTolerance()),
		webhook.WithReceiverLogger(logger),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	ginwebhook.Register(router, a.cfg.Webhook.Path, receiver,
		ginwebhook.WithMaxBodyBytes(a.cfg.Webhook.MaxBodyBytes),
		ginwebhook.WithLogger(logger),
	)
	return router, nil
}

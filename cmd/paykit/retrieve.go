package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/extensions/idempotency"
	paykithttp "github.com/paykit-sdk/paykit/http"
	"github.com/paykit-sdk/paykit/mcp"
)

func newRetrieveCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "retrieve <client_secret>",
		Short: "Retrieve a payment or setup intent by client secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.apiClient()
			if err != nil {
				return err
			}

			summary, err := retrieveIntent(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, summary)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	return cmd
}

func newConfirmCmd(a *app) *cobra.Command {
	var (
		output          string
		paymentMethodID string
		returnURL       string
		idempotencyKey  string
	)

	cmd := &cobra.Command{
		Use:   "confirm <client_secret>",
		Short: "Confirm a payment or setup intent",
		Long: `Confirms the intent identified by its client secret. Identical confirms
are deduplicated; set idempotency.redis_addr to share results across
processes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := a.apiClient()
			if err != nil {
				return err
			}
			client, closeStore, err := a.idempotentClient(api)
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			secret := args[0]
			var summary mcp.IntentSummary
			if strings.HasPrefix(secret, paykithttp.SetupIntentPrefix+"_") {
				si, err := client.ConfirmSetupIntent(ctx, &paykit.ConfirmSetupIntentParams{
					ClientSecret:    secret,
					PaymentMethodID: paymentMethodID,
					ReturnURL:       returnURL,
					IdempotencyKey:  idempotencyKey,
				})
				if err != nil {
					return err
				}
				summary = mcp.SummarizeSetupIntent(si)
			} else {
				pi, err := client.ConfirmPaymentIntent(ctx, &paykit.ConfirmPaymentIntentParams{
					ClientSecret:    secret,
					PaymentMethodID: paymentMethodID,
					ReturnURL:       returnURL,
					IdempotencyKey:  idempotencyKey,
				})
				if err != nil {
					return err
				}
				summary = mcp.SummarizePaymentIntent(pi)
			}

			return writeOutput(cmd.OutOrStdout(), output, summary)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	flags.StringVar(&paymentMethodID, "payment-method", "", "Payment method ID to confirm with")
	flags.StringVar(&returnURL, "return-url", "", "URL to return to after a redirect action")
	flags.StringVar(&idempotencyKey, "idempotency-key", "", "Explicit idempotency key")
	return cmd
}

func retrieveIntent(ctx context.Context, api paykit.APIClient, secret string) (mcp.IntentSummary, error) {
	if strings.HasPrefix(secret, paykithttp.SetupIntentPrefix+"_") {
		si, err := api.RetrieveSetupIntent(ctx, secret)
		if err != nil {
			return mcp.IntentSummary{}, err
		}
		return mcp.SummarizeSetupIntent(si), nil
	}
	pi, err := api.RetrievePaymentIntent(ctx, secret)
	if err != nil {
		return mcp.IntentSummary{}, err
	}
	return mcp.SummarizePaymentIntent(pi), nil
}

// apiClient builds the HTTP API client from config.
func (a *app) apiClient() (*paykithttp.HTTPAPIClient, error) {
	if a.cfg.API.PublishableKey == "" {
		return nil, fmt.Errorf("publishable key not configured (set api.publishable_key or PAYKIT_PUBLISHABLE_KEY)")
	}
	decoder, err := a.decoder()
	if err != nil {
		return nil, err
	}

	return paykithttp.NewHTTPAPIClient(&paykithttp.ClientConfig{
		URL:            a.cfg.API.URL,
		PublishableKey: a.cfg.API.PublishableKey,
		APIVersion:     a.cfg.API.APIVersion,
		Timeout:        a.cfg.GetAPITimeout(),
		MaxRetries:     a.cfg.API.MaxRetries,
		Logger:         a.logger,
		Decoder:        decoder,
	}), nil
}

// idempotentClient wraps api with confirm deduplication. The returned func
// releases the Redis connection when one was opened.
func (a *app) idempotentClient(api paykit.APIClient) (*idempotency.IdempotentClient, func(), error) {
	decoder, err := a.decoder()
	if err != nil {
		return nil, nil, err
	}
	opts := []idempotency.Option{
		idempotency.WithTTL(a.cfg.GetIdempotencyTTL()),
		idempotency.WithDecoder(decoder),
		idempotency.WithLogger(a.logger),
	}

	closeStore := func() {}
	if addr := a.cfg.Idempotency.RedisAddr; addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		var storeOpts []idempotency.RedisOption
		if a.cfg.Idempotency.KeyPrefix != "" {
			storeOpts = append(storeOpts, idempotency.WithKeyPrefix(a.cfg.Idempotency.KeyPrefix))
		}
		opts = append(opts, idempotency.WithStore(idempotency.NewRedisStore(rdb, a.cfg.GetIdempotencyTTL(), storeOpts...)))
		closeStore = func() { _ = rdb.Close() }
	}

	return idempotency.Wrap(api, opts...), closeStore, nil
}

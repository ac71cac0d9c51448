package paykit

import (
	"context"
	"net/url"
)

// APIClient is the publishable-key surface of the payments API.
// Every call authenticates the intent with its client secret, so no
// secret key is ever needed.
type APIClient interface {
	// RetrievePaymentIntent fetches a payment intent by client secret
	RetrievePaymentIntent(ctx context.Context, clientSecret string) (*PaymentIntent, error)

	// ConfirmPaymentIntent confirms a payment intent. The returned intent
	// carries a NextAction when the customer must authenticate.
	ConfirmPaymentIntent(ctx context.Context, params *ConfirmPaymentIntentParams) (*PaymentIntent, error)

	// RetrieveSetupIntent fetches a setup intent by client secret
	RetrieveSetupIntent(ctx context.Context, clientSecret string) (*SetupIntent, error)

	// ConfirmSetupIntent confirms a setup intent
	ConfirmSetupIntent(ctx context.Context, params *ConfirmSetupIntentParams) (*SetupIntent, error)

	// CreatePaymentMethod creates a single-use payment method
	CreatePaymentMethod(ctx context.Context, params *PaymentMethodParams) (*PaymentMethod, error)
}

// FormParams is implemented by request params that are sent form-encoded
type FormParams interface {
	Validate() error
	Encode() url.Values
}

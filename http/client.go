package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/types"
)

// ============================================================================
// HTTP API Client
// ============================================================================

// HTTPAPIClient talks to the payments API with a publishable key.
// Implements paykit.APIClient.
type HTTPAPIClient struct {
	resty   *resty.Client
	decoder *paykit.Decoder
	logger  *zap.Logger

	beforeRequest []paykit.BeforeRequestHook
	afterResponse []paykit.AfterResponseHook
	onFailure     []paykit.OnFailureHook
}

// ClientConfig configures the HTTP API client
type ClientConfig struct {
	// URL is the base URL of the API (optional, defaults to DefaultAPIURL)
	URL string

	// PublishableKey authenticates every request
	PublishableKey string

	// APIVersion pins the API version (optional)
	APIVersion string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// Timeout for requests (optional, defaults to 30s, ignored with HTTPClient)
	Timeout time.Duration

	// MaxRetries is the number of retries on 429 responses (optional, defaults to 3)
	MaxRetries int

	// RetryWaitTime is the base backoff between retries (optional, defaults to 1s)
	RetryWaitTime time.Duration

	// Logger receives request logs (optional)
	Logger *zap.Logger

	// Decoder decodes intents and their next actions (optional)
	Decoder *paykit.Decoder

	BeforeRequest []paykit.BeforeRequestHook
	AfterResponse []paykit.AfterResponseHook
	OnFailure     []paykit.OnFailureHook
}

// DefaultAPIURL is the public API endpoint
const DefaultAPIURL = "https://api.stripe.com/v1"

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxRetries    = 3
	defaultRetryWaitTime = 1 * time.Second
	maxRetryWaitTime     = 10 * time.Second

	idempotencyKeyHeader = "Idempotency-Key"
	requestIDHeader      = "Request-Id"
	apiVersionHeader     = "Stripe-Version"
	userAgent            = "paykit-go"
)

// NewHTTPAPIClient creates a new HTTP API client
func NewHTTPAPIClient(config *ClientConfig) *HTTPAPIClient {
	if config == nil {
		config = &ClientConfig{}
	}

	baseURL := config.URL
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	var rc *resty.Client
	if config.HTTPClient != nil {
		rc = resty.NewWithClient(config.HTTPClient)
	} else {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		rc = resty.New().SetTimeout(timeout)
	}

	maxRetries := config.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryWait := config.RetryWaitTime
	if retryWait == 0 {
		retryWait = defaultRetryWaitTime
	}
	maxWait := maxRetryWaitTime
	if retryWait > maxWait {
		maxWait = retryWait
	}

	rc.SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(maxRetries).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(maxWait).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		})
	if config.PublishableKey != "" {
		rc.SetAuthToken(config.PublishableKey)
	}
	if config.APIVersion != "" {
		rc.SetHeader(apiVersionHeader, config.APIVersion)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder := config.Decoder
	if decoder == nil {
		decoder = paykit.NewDecoder(paykit.WithLogger(logger))
	}

	return &HTTPAPIClient{
		resty:         rc,
		decoder:       decoder,
		logger:        logger,
		beforeRequest: config.BeforeRequest,
		afterResponse: config.AfterResponse,
		onFailure:     config.OnFailure,
	}
}

// ============================================================================
// APIClient Implementation
// ============================================================================

// RetrievePaymentIntent fetches a payment intent by client secret
func (c *HTTPAPIClient) RetrievePaymentIntent(ctx context.Context, clientSecret string) (*paykit.PaymentIntent, error) {
	id, err := ParseClientSecret(clientSecret, PaymentIntentPrefix)
	if err != nil {
		return nil, err
	}

	fields, err := c.do(ctx, http.MethodGet, "/payment_intents/"+id, url.Values{"client_secret": {clientSecret}}, "")
	if err != nil {
		return nil, err
	}
	return c.paymentIntent(fields)
}

// ConfirmPaymentIntent confirms a payment intent
func (c *HTTPAPIClient) ConfirmPaymentIntent(ctx context.Context, params *paykit.ConfirmPaymentIntentParams) (*paykit.PaymentIntent, error) {
	if params == nil {
		return nil, fmt.Errorf("confirm params are required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	id, err := ParseClientSecret(params.ClientSecret, PaymentIntentPrefix)
	if err != nil {
		return nil, err
	}

	fields, err := c.do(ctx, http.MethodPost, "/payment_intents/"+id+"/confirm", params.Encode(), params.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	return c.paymentIntent(fields)
}

// RetrieveSetupIntent fetches a setup intent by client secret
func (c *HTTPAPIClient) RetrieveSetupIntent(ctx context.Context, clientSecret string) (*paykit.SetupIntent, error) {
	id, err := ParseClientSecret(clientSecret, SetupIntentPrefix)
	if err != nil {
		return nil, err
	}

	fields, err := c.do(ctx, http.MethodGet, "/setup_intents/"+id, url.Values{"client_secret": {clientSecret}}, "")
	if err != nil {
		return nil, err
	}
	return c.setupIntent(fields)
}

// ConfirmSetupIntent confirms a setup intent
func (c *HTTPAPIClient) ConfirmSetupIntent(ctx context.Context, params *paykit.ConfirmSetupIntentParams) (*paykit.SetupIntent, error) {
	if params == nil {
		return nil, fmt.Errorf("confirm params are required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	id, err := ParseClientSecret(params.ClientSecret, SetupIntentPrefix)
	if err != nil {
		return nil, err
	}

	fields, err := c.do(ctx, http.MethodPost, "/setup_intents/"+id+"/confirm", params.Encode(), params.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	return c.setupIntent(fields)
}

// CreatePaymentMethod creates a payment method
func (c *HTTPAPIClient) CreatePaymentMethod(ctx context.Context, params *paykit.PaymentMethodParams) (*paykit.PaymentMethod, error) {
	if params == nil {
		return nil, fmt.Errorf("payment method params are required")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	fields, err := c.do(ctx, http.MethodPost, "/payment_methods", params.Encode(), "")
	if err != nil {
		return nil, err
	}
	pm := paykit.DecodePaymentMethod(fields)
	if pm == nil {
		return nil, fmt.Errorf("%w: not a payment method", paykit.ErrUnexpectedResponse)
	}
	return pm, nil
}

func (c *HTTPAPIClient) paymentIntent(fields types.Fields) (*paykit.PaymentIntent, error) {
	pi := c.decoder.DecodePaymentIntent(fields)
	if pi == nil {
		return nil, fmt.Errorf("%w: not a payment intent", paykit.ErrUnexpectedResponse)
	}
	return pi, nil
}

func (c *HTTPAPIClient) setupIntent(fields types.Fields) (*paykit.SetupIntent, error) {
	si := c.decoder.DecodeSetupIntent(fields)
	if si == nil {
		return nil, fmt.Errorf("%w: not a setup intent", paykit.ErrUnexpectedResponse)
	}
	return si, nil
}

// ============================================================================
// Internal HTTP Methods
// ============================================================================

// do sends one request and returns the decoded response object.
// Error responses are returned as *paykit.APIError.
func (c *HTTPAPIClient) do(ctx context.Context, method, path string, form url.Values, idempotencyKey string) (types.Fields, error) {
	req := c.resty.R().SetContext(ctx)
	if method == http.MethodGet {
		req.SetQueryParamsFromValues(form)
	} else {
		if idempotencyKey == "" {
			idempotencyKey = uuid.NewString()
		}
		req.SetHeader(idempotencyKeyHeader, idempotencyKey)
		req.SetFormDataFromValues(form)
	}

	reqCtx := paykit.RequestContext{
		Ctx:            ctx,
		Method:         method,
		Path:           path,
		IdempotencyKey: idempotencyKey,
		Timestamp:      time.Now(),
	}
	for _, hook := range c.beforeRequest {
		if err := hook(reqCtx); err != nil {
			return nil, fmt.Errorf("request aborted: %w", err)
		}
	}

	resp, err := req.Execute(method, path)
	duration := time.Since(reqCtx.Timestamp)
	if err != nil {
		err = fmt.Errorf("%s %s failed: %w", method, path, err)
		for _, hook := range c.onFailure {
			hook(paykit.FailureContext{RequestContext: reqCtx, Error: err, Duration: duration})
		}
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	requestID := resp.Header().Get(requestIDHeader)
	for _, hook := range c.afterResponse {
		hook(paykit.ResponseContext{
			RequestContext: reqCtx,
			StatusCode:     resp.StatusCode(),
			RequestID:      requestID,
			Duration:       duration,
		})
	}
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.String("request_id", requestID),
		zap.Duration("duration", duration),
	)

	fields, parseErr := types.ParseFields(resp.Body())
	if resp.IsError() {
		apiErr := paykit.DecodeErrorResponse(fields, resp.StatusCode())
		apiErr.RequestID = requestID
		return nil, apiErr
	}
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", paykit.ErrUnexpectedResponse, parseErr)
	}
	return fields, nil
}

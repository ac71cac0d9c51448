package echo

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/paykit-sdk/paykit/webhook"
)

const testSecret = "whsec_echo"

var eventPayload = []byte(`{"id":"evt_1","type":"setup_intent.succeeded","data":{"object":{"id":"seti_1","object":"setup_intent","status":"succeeded"}}}`)

func newServer(handlerErr error, opts ...Options) *echo.Echo {
	dispatcher := webhook.NewDispatcher().On(webhook.EventSetupIntentSucceeded, func(context.Context, *webhook.Event) error {
		return handlerErr
	})
	e := echo.New()
	Register(e, "/webhooks", webhook.NewReceiver(testSecret, dispatcher), opts...)
	return e
}

func deliver(e *echo.Echo, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandlerAccepted(t *testing.T) {
	rec := deliver(newServer(nil), eventPayload, webhook.SignPayload(time.Now(), eventPayload, testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received":true`)
}

func TestWebhookHandlerRejected(t *testing.T) {
	rec := deliver(newServer(nil), eventPayload, webhook.SignPayload(time.Now(), eventPayload, "whsec_other"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = deliver(newServer(nil), eventPayload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookHandlerFailure(t *testing.T) {
	rec := deliver(newServer(errors.New("boom")), eventPayload, webhook.SignPayload(time.Now(), eventPayload, testSecret))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestWebhookHandlerBodyLimit(t *testing.T) {
	rec := deliver(newServer(nil, WithMaxBodyBytes(8)), eventPayload, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

package actionschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paykit-sdk/paykit"
	"github.com/paykit-sdk/paykit/types"
)

func fingerprintPayload() types.Fields {
	return types.Fields{
		"type":                    "stripe_3ds2_fingerprint",
		"three_d_secure_2_source": "src_1",
		"directory_server_name":   "visa",
		"server_transaction_id":   "tx_1",
		"directory_server_encryption": map[string]interface{}{
			"directory_server_id": "A000000003",
			"certificate":         "-----BEGIN CERTIFICATE-----",
		},
	}
}

func TestNew(t *testing.T) {
	v, err := New()
	require.NoError(t, err)
	assert.Equal(t, []paykit.ActionKind{paykit.ActionKindRedirectToURL, paykit.ActionKindUseStripeSDK}, v.Kinds())
}

func TestValidatePayload(t *testing.T) {
	v := MustNew()

	tests := []struct {
		name    string
		kind    paykit.ActionKind
		payload types.Fields
		valid   bool
	}{
		{"redirect ok", paykit.ActionKindRedirectToURL, types.Fields{"url": "https://example.com/auth"}, true},
		{"redirect with return url", paykit.ActionKindRedirectToURL, types.Fields{"url": "https://example.com", "return_url": "myapp://done"}, true},
		{"redirect null return url", paykit.ActionKindRedirectToURL, types.Fields{"url": "https://example.com", "return_url": nil}, true},
		{"redirect missing url", paykit.ActionKindRedirectToURL, types.Fields{}, false},
		{"redirect url not a string", paykit.ActionKindRedirectToURL, types.Fields{"url": 42.0}, false},
		{"redirect relative url", paykit.ActionKindRedirectToURL, types.Fields{"url": "/relative"}, false},
		{"sdk missing type", paykit.ActionKindUseStripeSDK, types.Fields{}, false},
		{"sdk unknown sub-type", paykit.ActionKindUseStripeSDK, types.Fields{"type": "future_flow"}, true},
		{"sdk fingerprint ok", paykit.ActionKindUseStripeSDK, fingerprintPayload(), true},
		{"sdk fingerprint missing source", paykit.ActionKindUseStripeSDK, func() types.Fields {
			p := fingerprintPayload()
			delete(p, "three_d_secure_2_source")
			return p
		}(), false},
		{"sdk fingerprint missing certificate", paykit.ActionKindUseStripeSDK, func() types.Fields {
			p := fingerprintPayload()
			p["directory_server_encryption"] = map[string]interface{}{"directory_server_id": "A0"}
			return p
		}(), false},
		{"sdk redirect ok", paykit.ActionKindUseStripeSDK, types.Fields{"type": "three_d_secure_redirect", "stripe_js": "https://hooks.example.com/3ds"}, true},
		{"sdk redirect missing stripe_js", paykit.ActionKindUseStripeSDK, types.Fields{"type": "three_d_secure_redirect"}, false},
		{"kind without schema", paykit.ActionKindUnknown, types.Fields{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidatePayload(tt.kind, tt.payload)
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateAction(t *testing.T) {
	v := MustNew()

	result := v.ValidateAction(types.Fields{"type": "redirect_to_url", "redirect_to_url": map[string]interface{}{"url": "https://example.com"}})
	assert.True(t, result.Valid)

	result = v.ValidateAction(types.Fields{"redirect_to_url": map[string]interface{}{}})
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "type is required")

	result = v.ValidateAction(types.Fields{"type": "USE_STRIPE_SDK"})
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "use_stripe_sdk is required")

	result = v.ValidateAction(types.Fields{"type": "alipay_handle_redirect"})
	assert.True(t, result.Valid, "unknown types carry no schema")
}

func TestRegisterReplacesSchema(t *testing.T) {
	v := MustNew()
	err := v.Register(paykit.ActionKindRedirectToURL, []byte(`{"type":"object","required":["url","return_url"]}`))
	require.NoError(t, err)

	assert.NotEmpty(t, v.ValidatePayload(paykit.ActionKindRedirectToURL, types.Fields{"url": "https://example.com"}))

	err = v.Register(paykit.ActionKindRedirectToURL, []byte(`{"type": 12}`))
	assert.Error(t, err)
}

func TestDecoderDemotesOnSchemaErrors(t *testing.T) {
	var demotions []paykit.DemotionContext
	decoder := paykit.NewDecoder(
		paykit.WithPayloadValidator(MustNew()),
		paykit.WithDemotionHook(func(ctx paykit.DemotionContext) {
			demotions = append(demotions, ctx)
		}),
	)

	action := decoder.Decode(types.Fields{
		"type":            "redirect_to_url",
		"redirect_to_url": map[string]interface{}{"url": "/relative"},
	})
	require.NotNil(t, action)
	assert.Equal(t, paykit.ActionKindUnknown, action.Kind())
	assert.True(t, action.Demoted())

	require.Len(t, demotions, 1)
	assert.Equal(t, paykit.DemotionSchemaInvalid, demotions[0].Reason)
	assert.NotEmpty(t, demotions[0].Errors)

	action = decoder.Decode(types.Fields{
		"type":            "redirect_to_url",
		"redirect_to_url": map[string]interface{}{"url": "https://example.com/auth"},
	})
	assert.Equal(t, paykit.ActionKindRedirectToURL, action.Kind())
	assert.Len(t, demotions, 1)
}

package paykit

import (
	"net/url"

	"github.com/paykit-sdk/paykit/types"
)

// PayloadDecoder decodes the nested payload object of one action kind.
// It returns false unless every required field of the variant is present
// and well typed; unrecognized keys are ignored.
type PayloadDecoder func(payload types.Fields) (ActionPayload, bool)

// ============================================================================
// redirect_to_url
// ============================================================================

// RedirectToURL is the payload of a redirect_to_url action
type RedirectToURL struct {
	// URL is the page the customer must visit
	URL *url.URL
	// ReturnURL is where the customer is sent afterwards, if the server echoed one
	ReturnURL *url.URL
}

func (RedirectToURL) Kind() ActionKind { return ActionKindRedirectToURL }
func (RedirectToURL) isActionPayload() {}

func decodeRedirectToURL(payload types.Fields) (ActionPayload, bool) {
	target, ok := payload.URL("url")
	if !ok {
		return nil, false
	}
	p := RedirectToURL{URL: target}
	if returnURL, ok := payload.URL("return_url"); ok {
		p.ReturnURL = returnURL
	}
	return p, true
}

// ============================================================================
// use_stripe_sdk
// ============================================================================

// UseStripeSDKType is the sub-type of a use_stripe_sdk action
type UseStripeSDKType string

const (
	UseStripeSDKTypeUnknown             UseStripeSDKType = "unknown"
	UseStripeSDKTypeThreeDS2Fingerprint UseStripeSDKType = "stripe_3ds2_fingerprint"
	UseStripeSDKTypeThreeDSRedirect     UseStripeSDKType = "three_d_secure_redirect"
)

var useStripeSDKTypes = map[string]UseStripeSDKType{
	"stripe_3ds2_fingerprint": UseStripeSDKTypeThreeDS2Fingerprint,
	"three_d_secure_redirect": UseStripeSDKTypeThreeDSRedirect,
}

// UseStripeSDKTypeFromString maps a sub-type string, case-insensitively
func UseStripeSDKTypeFromString(s string) UseStripeSDKType {
	return lookup(useStripeSDKTypes, s, UseStripeSDKTypeUnknown)
}

// DirectoryServerEncryption carries the card network's 3DS2 encryption material
type DirectoryServerEncryption struct {
	DirectoryServerID          string
	Certificate                string
	RootCertificateAuthorities []string
	KeyID                      string
}

// UseStripeSDK is the payload of a use_stripe_sdk action.
// Which fields are set depends on Type.
type UseStripeSDK struct {
	Type         UseStripeSDKType
	DeclaredType string

	// stripe_3ds2_fingerprint
	ThreeDSSourceID           string
	DirectoryServerName       string
	ServerTransactionID       string
	DirectoryServerEncryption *DirectoryServerEncryption

	// three_d_secure_redirect
	RedirectURL *url.URL
}

func (UseStripeSDK) Kind() ActionKind { return ActionKindUseStripeSDK }
func (UseStripeSDK) isActionPayload() {}

func decodeUseStripeSDK(payload types.Fields) (ActionPayload, bool) {
	declared, ok := payload.String("type")
	if !ok {
		return nil, false
	}

	p := UseStripeSDK{
		Type:         UseStripeSDKTypeFromString(declared),
		DeclaredType: declared,
	}

	switch p.Type {
	case UseStripeSDKTypeThreeDS2Fingerprint:
		sourceID, ok1 := payload.String("three_d_secure_2_source")
		dsName, ok2 := payload.String("directory_server_name")
		txID, ok3 := payload.String("server_transaction_id")
		encryption, ok4 := decodeDirectoryServerEncryption(payload)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return nil, false
		}
		p.ThreeDSSourceID = sourceID
		p.DirectoryServerName = dsName
		p.ServerTransactionID = txID
		p.DirectoryServerEncryption = encryption

	case UseStripeSDKTypeThreeDSRedirect:
		redirect, ok := payload.URL("stripe_js")
		if !ok {
			return nil, false
		}
		p.RedirectURL = redirect
	}

	return p, true
}

func decodeDirectoryServerEncryption(payload types.Fields) (*DirectoryServerEncryption, bool) {
	enc, ok := payload.Mapping("directory_server_encryption")
	if !ok {
		return nil, false
	}
	dsID, ok := enc.String("directory_server_id")
	if !ok {
		return nil, false
	}
	cert, ok := enc.String("certificate")
	if !ok {
		return nil, false
	}
	out := &DirectoryServerEncryption{
		DirectoryServerID: dsID,
		Certificate:       cert,
	}
	if roots, ok := enc.StringSlice("root_certificate_authorities"); ok {
		out.RootCertificateAuthorities = roots
	}
	if keyID, ok := enc.String("key_id"); ok {
		out.KeyID = keyID
	}
	return out, true
}

// payloadDecoders maps each known kind to its decoder
var payloadDecoders = map[ActionKind]PayloadDecoder{
	ActionKindRedirectToURL: decodeRedirectToURL,
	ActionKindUseStripeSDK:  decodeUseStripeSDK,
}

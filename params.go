package paykit

import (
	"net/url"
	"strconv"
)

// Address is a postal address
type Address struct {
	Line1      string `validate:"omitempty,max=200"`
	Line2      string `validate:"omitempty,max=200"`
	City       string `validate:"omitempty,max=100"`
	State      string `validate:"omitempty,max=100"`
	PostalCode string `validate:"omitempty,max=20"`
	Country    string `validate:"omitempty,iso3166_1_alpha2"`
}

// BillingDetails is the billing contact attached to a payment method
type BillingDetails struct {
	Name    string `validate:"omitempty,max=200"`
	Email   string `validate:"omitempty,email"`
	Phone   string `validate:"omitempty,max=40"`
	Address *Address
}

// CardParams carries raw card data for creating a card payment method
type CardParams struct {
	Number   string `validate:"required,numeric,min=12,max=19"`
	ExpMonth int    `validate:"required,min=1,max=12"`
	ExpYear  int    `validate:"required,gt=0"`
	CVC      string `validate:"omitempty,numeric,min=3,max=4"`
}

// PaymentMethodParams creates a payment method, either directly or inline
// with a confirmation.
type PaymentMethodParams struct {
	Type           PaymentMethodType `validate:"required,ne=unknown"`
	Card           *CardParams       `validate:"required_if=Type card"`
	BillingDetails *BillingDetails
	Metadata       map[string]string
}

// ConfirmPaymentIntentParams confirms a payment intent with its client secret
type ConfirmPaymentIntentParams struct {
	ClientSecret      string `validate:"required"`
	PaymentMethodID   string `validate:"excluded_with=PaymentMethodData"`
	PaymentMethodData *PaymentMethodParams
	ReturnURL         string `validate:"omitempty,url"`
	SetupFutureUsage  string `validate:"omitempty,oneof=on_session off_session"`
	UseStripeSDK      bool

	// IdempotencyKey is sent as a header, not as a form field.
	// A random key is used when empty.
	IdempotencyKey string `validate:"-"`
}

// ConfirmSetupIntentParams confirms a setup intent with its client secret
type ConfirmSetupIntentParams struct {
	ClientSecret      string `validate:"required"`
	PaymentMethodID   string `validate:"excluded_with=PaymentMethodData"`
	PaymentMethodData *PaymentMethodParams
	ReturnURL         string `validate:"omitempty,url"`
	UseStripeSDK      bool

	IdempotencyKey string `validate:"-"`
}

// Validate checks the params before they are sent
func (p *PaymentMethodParams) Validate() error { return validateParams(p) }

// Validate checks the params before they are sent
func (p *ConfirmPaymentIntentParams) Validate() error { return validateParams(p) }

// Validate checks the params before they are sent
func (p *ConfirmSetupIntentParams) Validate() error { return validateParams(p) }

// Encode form-encodes the params for POST /payment_methods
func (p *PaymentMethodParams) Encode() url.Values {
	form := url.Values{}
	p.encodeInto(form, "")
	return form
}

// Encode form-encodes the params for POST /payment_intents/{id}/confirm
func (p *ConfirmPaymentIntentParams) Encode() url.Values {
	form := url.Values{}
	form.Set("client_secret", p.ClientSecret)
	encodeConfirmation(form, p.PaymentMethodID, p.PaymentMethodData, p.ReturnURL, p.UseStripeSDK)
	if p.SetupFutureUsage != "" {
		form.Set("setup_future_usage", p.SetupFutureUsage)
	}
	return form
}

// Encode form-encodes the params for POST /setup_intents/{id}/confirm
func (p *ConfirmSetupIntentParams) Encode() url.Values {
	form := url.Values{}
	form.Set("client_secret", p.ClientSecret)
	encodeConfirmation(form, p.PaymentMethodID, p.PaymentMethodData, p.ReturnURL, p.UseStripeSDK)
	return form
}

func encodeConfirmation(form url.Values, pmID string, pmData *PaymentMethodParams, returnURL string, useSDK bool) {
	if pmID != "" {
		form.Set("payment_method", pmID)
	}
	if pmData != nil {
		pmData.encodeInto(form, "payment_method_data")
	}
	if returnURL != "" {
		form.Set("return_url", returnURL)
	}
	if useSDK {
		form.Set("use_stripe_sdk", "true")
	}
}

func (p *PaymentMethodParams) encodeInto(form url.Values, prefix string) {
	setNonEmpty(form, formKey(prefix, "type"), string(p.Type))

	if p.Card != nil {
		card := formKey(prefix, "card")
		setNonEmpty(form, formKey(card, "number"), p.Card.Number)
		if p.Card.ExpMonth != 0 {
			form.Set(formKey(card, "exp_month"), strconv.Itoa(p.Card.ExpMonth))
		}
		if p.Card.ExpYear != 0 {
			form.Set(formKey(card, "exp_year"), strconv.Itoa(p.Card.ExpYear))
		}
		setNonEmpty(form, formKey(card, "cvc"), p.Card.CVC)
	}

	if bd := p.BillingDetails; bd != nil {
		billing := formKey(prefix, "billing_details")
		setNonEmpty(form, formKey(billing, "name"), bd.Name)
		setNonEmpty(form, formKey(billing, "email"), bd.Email)
		setNonEmpty(form, formKey(billing, "phone"), bd.Phone)
		if a := bd.Address; a != nil {
			addr := formKey(billing, "address")
			setNonEmpty(form, formKey(addr, "line1"), a.Line1)
			setNonEmpty(form, formKey(addr, "line2"), a.Line2)
			setNonEmpty(form, formKey(addr, "city"), a.City)
			setNonEmpty(form, formKey(addr, "state"), a.State)
			setNonEmpty(form, formKey(addr, "postal_code"), a.PostalCode)
			setNonEmpty(form, formKey(addr, "country"), a.Country)
		}
	}

	for k, v := range p.Metadata {
		form.Set(formKey(formKey(prefix, "metadata"), k), v)
	}
}

// formKey builds a bracketed form key: formKey("a", "b") == "a[b]"
func formKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "[" + name + "]"
}

func setNonEmpty(form url.Values, key, value string) {
	if value != "" {
		form.Set(key, value)
	}
}

package paykit

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodePaymentMethod(t *testing.T) {
	pm, err := ParsePaymentMethod([]byte(`{
		"id": "pm_1",
		"object": "payment_method",
		"type": "card",
		"created": 1700000000,
		"customer": "cus_1",
		"billing_details": {
			"name": "Jenny Rosen",
			"email": "jenny@example.com",
			"phone": null,
			"address": {"line1": "1 Main St", "city": "Berlin", "postal_code": "10115", "country": "DE"}
		},
		"card": {"brand": "Visa", "last4": "4242", "exp_month": 12, "exp_year": 2030, "funding": "credit", "country": "US", "checks": {}}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pm.Type != PaymentMethodTypeCard || pm.CustomerID != "cus_1" {
		t.Errorf("unexpected type %s customer %s", pm.Type, pm.CustomerID)
	}
	wantBilling := &BillingDetails{
		Name:  "Jenny Rosen",
		Email: "jenny@example.com",
		Address: &Address{
			Line1:      "1 Main St",
			City:       "Berlin",
			PostalCode: "10115",
			Country:    "DE",
		},
	}
	if diff := cmp.Diff(wantBilling, pm.BillingDetails); diff != "" {
		t.Errorf("billing mismatch (-want +got):\n%s", diff)
	}
	wantCard := &PaymentMethodCard{
		Brand:    CardBrandVisa,
		Last4:    "4242",
		ExpMonth: 12,
		ExpYear:  2030,
		Funding:  "credit",
		Country:  "US",
	}
	if diff := cmp.Diff(wantCard, pm.Card); diff != "" {
		t.Errorf("card mismatch (-want +got):\n%s", diff)
	}
	if !pm.RawFields().Has("object") {
		t.Error("expected raw fields")
	}
}

func TestDecodePaymentMethod_UnknownTypeAndBrand(t *testing.T) {
	pm := DecodePaymentMethod(mustFields(t, `{"id":"pm_2","type":"future_wallet","card":{"brand":"newnet"}}`))
	if pm.Type != PaymentMethodTypeUnknown {
		t.Errorf("expected unknown type, got %s", pm.Type)
	}
	if pm.Card.Brand != CardBrandUnknown {
		t.Errorf("expected unknown brand, got %s", pm.Card.Brand)
	}
	if pm.BillingDetails != nil {
		t.Error("expected no billing details")
	}
}

func TestParsePaymentMethod_Errors(t *testing.T) {
	if _, err := ParsePaymentMethod([]byte(`{"id":"pm_1"}`)); !errors.Is(err, ErrUnexpectedResponse) {
		t.Errorf("expected ErrUnexpectedResponse, got %v", err)
	}
	if _, err := ParsePaymentMethod([]byte(`"pm_1"`)); err == nil {
		t.Error("expected parse error")
	}
}

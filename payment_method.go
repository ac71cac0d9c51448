package paykit

import (
	"fmt"
	"time"

	"github.com/paykit-sdk/paykit/types"
)

// PaymentMethod is a saved or single-use payment instrument
type PaymentMethod struct {
	ID             string
	Type           PaymentMethodType
	Created        time.Time
	Livemode       bool
	CustomerID     string
	BillingDetails *BillingDetails
	Card           *PaymentMethodCard

	rawFields types.Fields
}

// PaymentMethodCard holds the non-sensitive details of a card
type PaymentMethodCard struct {
	Brand    CardBrand
	Last4    string
	ExpMonth int
	ExpYear  int
	Country  string
	Funding  string
}

// RawFields returns a copy of the original response object
func (pm *PaymentMethod) RawFields() types.Fields {
	return pm.rawFields.Clone()
}

// DecodePaymentMethod decodes a payment method object.
// It returns nil when id or type is missing.
func DecodePaymentMethod(fields types.Fields) *PaymentMethod {
	id, ok := fields.String("id")
	if !ok {
		return nil
	}
	pmType, ok := fields.String("type")
	if !ok {
		return nil
	}

	pm := &PaymentMethod{
		ID:        id,
		Type:      PaymentMethodTypeFromString(pmType),
		Livemode:  fields.Bool("livemode", false),
		rawFields: fields.Clone(),
	}
	pm.Created, _ = fields.Date("created")
	pm.CustomerID = expandableID(fields, "customer")

	if billing, ok := fields.Mapping("billing_details"); ok {
		pm.BillingDetails = decodeBillingDetails(billing)
	}
	if card, ok := fields.Mapping("card"); ok {
		pm.Card = decodePaymentMethodCard(card)
	}
	return pm
}

// ParsePaymentMethod decodes payment method bytes
func ParsePaymentMethod(data []byte) (*PaymentMethod, error) {
	fields, err := types.ParseFields(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment method: %w", err)
	}
	pm := DecodePaymentMethod(fields)
	if pm == nil {
		return nil, fmt.Errorf("%w: not a payment method", ErrUnexpectedResponse)
	}
	return pm, nil
}

func decodePaymentMethodCard(fields types.Fields) *PaymentMethodCard {
	card := &PaymentMethodCard{Brand: CardBrandUnknown}
	if brand, ok := fields.String("brand"); ok {
		card.Brand = CardBrandFromString(brand)
	}
	card.Last4, _ = fields.String("last4")
	card.Country, _ = fields.String("country")
	card.Funding, _ = fields.String("funding")
	if month, ok := fields.Int64("exp_month"); ok {
		card.ExpMonth = int(month)
	}
	if year, ok := fields.Int64("exp_year"); ok {
		card.ExpYear = int(year)
	}
	return card
}

func decodeBillingDetails(fields types.Fields) *BillingDetails {
	bd := &BillingDetails{}
	bd.Name, _ = fields.String("name")
	bd.Email, _ = fields.String("email")
	bd.Phone, _ = fields.String("phone")
	if addr, ok := fields.Mapping("address"); ok {
		a := &Address{}
		a.Line1, _ = addr.String("line1")
		a.Line2, _ = addr.String("line2")
		a.City, _ = addr.String("city")
		a.State, _ = addr.String("state")
		a.PostalCode, _ = addr.String("postal_code")
		a.Country, _ = addr.String("country")
		bd.Address = a
	}
	return bd
}

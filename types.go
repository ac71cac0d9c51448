package paykit

import "strings"

// IntentStatus is the lifecycle state of a payment or setup intent
type IntentStatus string

const (
	IntentStatusUnknown               IntentStatus = "unknown"
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusCanceled              IntentStatus = "canceled"
	IntentStatusSucceeded             IntentStatus = "succeeded"
)

var intentStatuses = map[string]IntentStatus{
	"requires_payment_method": IntentStatusRequiresPaymentMethod,
	"requires_confirmation":   IntentStatusRequiresConfirmation,
	"requires_action":         IntentStatusRequiresAction,
	// Older API versions used requires_source_action
	"requires_source_action": IntentStatusRequiresAction,
	"processing":             IntentStatusProcessing,
	"requires_capture":       IntentStatusRequiresCapture,
	"canceled":               IntentStatusCanceled,
	"succeeded":              IntentStatusSucceeded,
}

// IntentStatusFromString maps a status string, case-insensitively
func IntentStatusFromString(s string) IntentStatus {
	return lookup(intentStatuses, s, IntentStatusUnknown)
}

// SetupIntentUsage describes how a saved payment method will be used
type SetupIntentUsage string

const (
	SetupIntentUsageUnknown    SetupIntentUsage = "unknown"
	SetupIntentUsageNone       SetupIntentUsage = "none"
	SetupIntentUsageOnSession  SetupIntentUsage = "on_session"
	SetupIntentUsageOffSession SetupIntentUsage = "off_session"
)

var setupIntentUsages = map[string]SetupIntentUsage{
	"none":        SetupIntentUsageNone,
	"on_session":  SetupIntentUsageOnSession,
	"off_session": SetupIntentUsageOffSession,
}

// SetupIntentUsageFromString maps a usage string, case-insensitively
func SetupIntentUsageFromString(s string) SetupIntentUsage {
	return lookup(setupIntentUsages, s, SetupIntentUsageUnknown)
}

// PaymentMethodType is the kind of a payment method
type PaymentMethodType string

const (
	PaymentMethodTypeUnknown          PaymentMethodType = "unknown"
	PaymentMethodTypeCard             PaymentMethodType = "card"
	PaymentMethodTypeCardPresent      PaymentMethodType = "card_present"
	PaymentMethodTypeAlipay           PaymentMethodType = "alipay"
	PaymentMethodTypeAUBECSDebit      PaymentMethodType = "au_becs_debit"
	PaymentMethodTypeBacsDebit        PaymentMethodType = "bacs_debit"
	PaymentMethodTypeBancontact       PaymentMethodType = "bancontact"
	PaymentMethodTypeEPS              PaymentMethodType = "eps"
	PaymentMethodTypeFPX              PaymentMethodType = "fpx"
	PaymentMethodTypeGiropay          PaymentMethodType = "giropay"
	PaymentMethodTypeGrabPay          PaymentMethodType = "grabpay"
	PaymentMethodTypeIDEAL            PaymentMethodType = "ideal"
	PaymentMethodTypeOXXO             PaymentMethodType = "oxxo"
	PaymentMethodTypePrzelewy24       PaymentMethodType = "p24"
	PaymentMethodTypeSEPADebit        PaymentMethodType = "sepa_debit"
	PaymentMethodTypeSofort           PaymentMethodType = "sofort"
	PaymentMethodTypeUSBankAccount    PaymentMethodType = "us_bank_account"
	PaymentMethodTypeAfterpayClearpay PaymentMethodType = "afterpay_clearpay"
)

var paymentMethodTypes = map[string]PaymentMethodType{
	"card":              PaymentMethodTypeCard,
	"card_present":      PaymentMethodTypeCardPresent,
	"alipay":            PaymentMethodTypeAlipay,
	"au_becs_debit":     PaymentMethodTypeAUBECSDebit,
	"bacs_debit":        PaymentMethodTypeBacsDebit,
	"bancontact":        PaymentMethodTypeBancontact,
	"eps":               PaymentMethodTypeEPS,
	"fpx":               PaymentMethodTypeFPX,
	"giropay":           PaymentMethodTypeGiropay,
	"grabpay":           PaymentMethodTypeGrabPay,
	"ideal":             PaymentMethodTypeIDEAL,
	"oxxo":              PaymentMethodTypeOXXO,
	"p24":               PaymentMethodTypePrzelewy24,
	"sepa_debit":        PaymentMethodTypeSEPADebit,
	"sofort":            PaymentMethodTypeSofort,
	"us_bank_account":   PaymentMethodTypeUSBankAccount,
	"afterpay_clearpay": PaymentMethodTypeAfterpayClearpay,
}

// PaymentMethodTypeFromString maps a payment method type string, case-insensitively
func PaymentMethodTypeFromString(s string) PaymentMethodType {
	return lookup(paymentMethodTypes, s, PaymentMethodTypeUnknown)
}

// CardBrand is the network of a card
type CardBrand string

const (
	CardBrandUnknown    CardBrand = "unknown"
	CardBrandVisa       CardBrand = "visa"
	CardBrandAmex       CardBrand = "amex"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandDiscover   CardBrand = "discover"
	CardBrandJCB        CardBrand = "jcb"
	CardBrandDinersClub CardBrand = "diners"
	CardBrandUnionPay   CardBrand = "unionpay"
)

var cardBrands = map[string]CardBrand{
	"visa":             CardBrandVisa,
	"amex":             CardBrandAmex,
	"american express": CardBrandAmex,
	"mastercard":       CardBrandMastercard,
	"discover":         CardBrandDiscover,
	"jcb":              CardBrandJCB,
	"diners":           CardBrandDinersClub,
	"diners club":      CardBrandDinersClub,
	"unionpay":         CardBrandUnionPay,
}

// CardBrandFromString maps a brand string, case-insensitively
func CardBrandFromString(s string) CardBrand {
	return lookup(cardBrands, s, CardBrandUnknown)
}

func lookup[T any](table map[string]T, s string, fallback T) T {
	if v, ok := table[strings.ToLower(s)]; ok {
		return v
	}
	return fallback
}

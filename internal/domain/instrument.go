package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies the tender type of a payment instrument.
type PaymentMethod string

const (
	MethodCreditCard      PaymentMethod = "BRAINTREE_CREDIT"
	MethodPayPal          PaymentMethod = "BRAINTREE_PAYPAL"
	MethodVenmo           PaymentMethod = "BRAINTREE_VENMO"
	MethodApplePay        PaymentMethod = "BRAINTREE_APPLEPAY"
	MethodGiftCertificate PaymentMethod = "GIFT_CERTIFICATE"
)

// GatewayMethods lists the tender types processed through the gateway. These
// are mutually exclusive on a basket; a gift certificate may coexist.
var GatewayMethods = []PaymentMethod{
	MethodCreditCard,
	MethodPayPal,
	MethodVenmo,
	MethodApplePay,
}

// IsGatewayMethod reports whether the method is processed through the gateway.
func IsGatewayMethod(method PaymentMethod) bool {
	for _, m := range GatewayMethods {
		if m == method {
			return true
		}
	}
	return false
}

// TransactionType is the local transaction classification derived from the
// gateway's reported status.
type TransactionType string

const (
	TransactionTypeAuth    TransactionType = "AUTH"
	TransactionTypeCapture TransactionType = "CAPTURE"
)

// TransactionRecord is the order-side record of a completed gateway call.
type TransactionRecord struct {
	ID     string
	Amount decimal.Decimal
	Type   TransactionType
}

// PaymentInstrument is one tender attached to a basket or order. Created
// during handle, it carries the client-collected nonce until authorize
// consumes it. Nonce and CustomFields are cleared after a successful
// authorize; FailReason is set only on failure.
type PaymentInstrument struct {
	ID     string
	Method PaymentMethod
	Amount decimal.Decimal

	// Single-use client token; cleared after a successful authorize
	Nonce string

	// Stable vault token for a previously stored credential
	Token string

	// Opaque client-side fraud signal forwarded to the gateway
	DeviceData string

	CustomFields map[string]string

	ThreeDSecureRequired bool
	ThreeDSecureStatus   string

	SaveMethod  bool
	MakeDefault bool

	// Set only when authorize fails; inspected by the checkout flow
	FailReason string

	PayerEmail   string
	WalletUserID string

	CardType     string
	CardHolder   string
	MaskedNumber string
	ExpMonth     string
	ExpYear      string

	Transaction TransactionRecord
}

// NewPaymentInstrument creates an instrument for the given tender and amount.
func NewPaymentInstrument(method PaymentMethod, amount decimal.Decimal) *PaymentInstrument {
	return &PaymentInstrument{
		ID:     uuid.New().String(),
		Method: method,
		Amount: amount,
	}
}

// ClearTransientData drops the single-use nonce and resolved custom fields.
// Raw client tokens must never survive a completed authorize.
func (pi *PaymentInstrument) ClearTransientData() {
	pi.Nonce = ""
	pi.CustomFields = nil
}

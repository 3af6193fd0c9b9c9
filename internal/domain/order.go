package domain

import (
	"github.com/shopspring/decimal"
)

// Address is a normalized postal address in the gateway's field vocabulary.
type Address struct {
	FirstName         string
	SecondName        string
	LastName          string
	Company           string
	StreetAddress     string
	ExtendedAddress   string
	Locality          string
	Region            string
	PostalCode        string
	CountryCodeAlpha2 string
	CountryName       string
	Phone             string
}

// LineItem is one order line submitted with enhanced transaction data.
type LineItem struct {
	Name           string
	Quantity       string
	UnitAmount     string
	TotalAmount    string
	TaxAmount      string
	DiscountAmount string
	UnitOfMeasure  string
	ProductCode    string
	CommodityCode  string
}

// Profile holds the contact fields of a registered customer.
type Profile struct {
	CustomerNo    string
	FirstName     string
	LastName      string
	Email         string
	Company       string
	PhoneHome     string
	PhoneMobile   string
	PhoneBusiness string
	Fax           string
}

// Phone returns the first populated phone number, preferring mobile.
func (p *Profile) Phone() string {
	if p.PhoneMobile != "" {
		return p.PhoneMobile
	}
	if p.PhoneHome != "" {
		return p.PhoneHome
	}
	return p.PhoneBusiness
}

// Customer is the shopper attached to a basket or order.
type Customer struct {
	Registered bool
	Profile    *Profile
	Wallet     *Wallet
}

// PaymentStatus mirrors the gateway transaction status cached on the order by
// the status sync job.
type PaymentStatus string

// Order is the basket/order aggregate the processors mutate. A Basket is the
// same aggregate before placement.
type Order struct {
	OrderNo       string
	CurrencyCode  string
	LocaleID      string
	CustomerEmail string

	Customer        *Customer
	BillingAddress  *Address
	ShippingAddress *Address
	LineItems       []LineItem

	TotalGrossPrice    decimal.Decimal
	TotalTax           decimal.Decimal
	ShippingTotalPrice decimal.Decimal
	OrderDiscount      decimal.Decimal

	Instruments []*PaymentInstrument

	// Set once a gateway call was attempted for this order
	GatewayOrder bool

	// Deferred-capture flow: a vault token was stored for later settlement
	IntentOrder bool

	PaymentStatus PaymentStatus
}

// Basket is an order prior to placement.
type Basket = Order

// AddInstrument attaches an instrument to the order.
func (o *Order) AddInstrument(pi *PaymentInstrument) {
	o.Instruments = append(o.Instruments, pi)
}

// RemoveInstrument detaches the instrument with the given id.
func (o *Order) RemoveInstrument(id string) {
	kept := o.Instruments[:0]
	for _, pi := range o.Instruments {
		if pi.ID != id {
			kept = append(kept, pi)
		}
	}
	o.Instruments = kept
}

// RemoveGatewayInstruments detaches every gateway-family instrument. Called by
// handle before staging a new tender; gateway tenders are single-use per
// basket while gift certificates may remain.
func (o *Order) RemoveGatewayInstruments() {
	kept := o.Instruments[:0]
	for _, pi := range o.Instruments {
		if !IsGatewayMethod(pi.Method) {
			kept = append(kept, pi)
		}
	}
	o.Instruments = kept
}

// GatewayInstrument returns the first gateway-family instrument, or nil.
func (o *Order) GatewayInstrument() *PaymentInstrument {
	for _, pi := range o.Instruments {
		if IsGatewayMethod(pi.Method) {
			return pi
		}
	}
	return nil
}

// GiftCertificateAmount sums the gift certificate tenders on the order.
func (o *Order) GiftCertificateAmount() decimal.Decimal {
	total := decimal.Zero
	for _, pi := range o.Instruments {
		if pi.Method == MethodGiftCertificate {
			total = total.Add(pi.Amount)
		}
	}
	return total
}

// OpenAmount returns the order total not covered by gift certificates. This
// is the amount a newly staged gateway instrument charges.
func (o *Order) OpenAmount() decimal.Decimal {
	open := o.TotalGrossPrice.Sub(o.GiftCertificateAmount())
	if open.IsNegative() {
		return decimal.Zero
	}
	return open
}

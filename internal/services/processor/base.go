package processor

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/config"
	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/locale"
)

// base carries the shared pieces of the concrete processors.
type base struct {
	deps   Deps
	method domain.PaymentMethod
	cfg    config.MethodConfig
}

// stageInstrument performs the common front half of handle: it clears
// competing tenders and attaches a fresh instrument charging the open amount.
// The express flow clears every tender; the billing-page flow clears only
// gateway-family ones so a gift certificate can stay applied.
func (b *base) stageInstrument(basket *domain.Basket, fromExpressFlow bool) *domain.PaymentInstrument {
	if fromExpressFlow {
		basket.Instruments = nil
	} else {
		basket.RemoveGatewayInstruments()
	}
	instrument := domain.NewPaymentInstrument(b.method, basket.OpenAmount())
	basket.AddInstrument(instrument)
	return instrument
}

// attachCommonFields stages the client-collected values onto the instrument.
func (b *base) attachCommonFields(instrument *domain.PaymentInstrument, params *HandleParams) {
	instrument.Nonce = params.Nonce
	instrument.DeviceData = params.DeviceData
	instrument.MakeDefault = params.MakeDefault
	instrument.SaveMethod = params.SaveMethod
	instrument.ThreeDSecureRequired = params.ThreeDSecureRequired && b.deps.Payment.ThreeDSecureEnabled
	instrument.CustomFields = params.CustomFields
	instrument.PayerEmail = params.Email
}

// WalletEmailSessionKey holds the express wallet account email for the rest
// of the shopper session so later checkout pages can prefill it.
const WalletEmailSessionKey = "express_wallet_email"

func (b *base) captureWalletEmail(ctx context.Context, email string) {
	if b.deps.Session == nil || email == "" {
		return
	}
	if err := b.deps.Session.Set(ctx, WalletEmailSessionKey, email); err != nil {
		b.deps.Logger.Warn("Failed to cache wallet email", zap.Error(err))
	}
}

// tokenPreferred decides whether the stable vault token is sent instead of
// the nonce: the customer must be known-vaulted, a token must be present,
// and no step-up authentication may be pending. With no nonce at all the
// token is the only option left.
func (b *base) tokenPreferred(vaulted bool, instrument *domain.PaymentInstrument) bool {
	allowed := vaulted && instrument.Token != "" && !instrument.ThreeDSecureRequired
	return allowed || instrument.Nonce == ""
}

// saleParams assembles the parameter set shared by every sale transaction.
func (b *base) saleParams(ctx context.Context, order *domain.Order, instrument *domain.PaymentInstrument) braintree.Params {
	vaulted := b.deps.Vault.CustomerExists(ctx, order.Customer)

	params := braintree.Params{
		"orderId":      order.OrderNo,
		"amount":       instrument.Amount.StringFixed(2),
		"currencyCode": order.CurrencyCode,
	}
	if fields := b.deps.Fields.Resolve(ctx, order, instrument); len(fields) > 0 {
		params["customFields"] = fields
	}

	if vaulted {
		params["customerId"] = b.deps.Vault.CustomerID(order.Customer.Profile.CustomerNo)
	} else {
		params["customer"] = guestCustomerParams(order)
	}

	if b.tokenPreferred(vaulted, instrument) {
		params["token"] = instrument.Token
	} else {
		params["nonce"] = instrument.Nonce
	}

	options := &braintree.SaleOptions{
		SubmitForSettlement: b.cfg.PaymentModel == config.PaymentModelSale,
	}
	switch b.cfg.VaultMode {
	case config.VaultModeAlways:
		options.StoreInVault = true
	case config.VaultModeOnSuccess:
		options.StoreInVaultOnSuccess = true
	}
	if b.cfg.VaultMode != config.VaultModeNever {
		options.AddBillingAddress = true
	}
	params["options"] = options

	if b.cfg.DescriptorName != "" {
		params["descriptor"] = &braintree.Descriptor{
			Name:  b.cfg.DescriptorName,
			Phone: b.cfg.DescriptorPhone,
			URL:   b.cfg.DescriptorURL,
		}
	}
	if b.cfg.FraudToolsEnabled {
		params["deviceData"] = instrument.DeviceData
	}

	return params
}

// level23Params attaches the enhanced-data block. l2Only restricts it to tax
// data; the wallet methods keep the line-item level off until the gateway
// fixes its discount rounding on that path.
func (b *base) level23Params(params braintree.Params, order *domain.Order, l2Only bool) {
	if !b.deps.Payment.Level23Enabled {
		return
	}
	level := &braintree.Level23{
		TaxAmount: order.TotalTax.StringFixed(2),
		L2Only:    l2Only,
	}

	shipping, _ := params["shipping"].(*domain.Address)
	if shipping != nil {
		localeCountry := locale.CountryFromLocale(order.LocaleID)
		if !l2Only || strings.EqualFold(localeCountry, shipping.CountryCodeAlpha2) {
			level.ShippingCountryAlpha3 = locale.CountryAlpha3(order.LocaleID)
		}
	}

	if !l2Only {
		level.ShippingAmount = order.ShippingTotalPrice.StringFixed(2)
		level.DiscountAmount = order.OrderDiscount.StringFixed(2)
		level.LineItems = order.LineItems
	}
	params["level23"] = level
}

// authorizeFailed records the failure on the instrument and marks the order
// as gateway-processed. Authorization still reports success; the checkout
// flow inspects FailReason.
func (b *base) authorizeFailed(order *domain.Order, instrument *domain.PaymentInstrument, err error) AuthorizeResult {
	b.deps.Logger.Error("Authorization failed",
		zap.String("order_no", order.OrderNo),
		zap.String("method", string(b.method)),
		zap.Error(err),
	)
	order.GatewayOrder = true
	instrument.FailReason = strings.Join(domain.UserMessages(err), "\n")
	instrument.SaveMethod = false
	instrument.MakeDefault = false
	return AuthorizeResult{Authorized: true}
}

// saveTransaction records the successful sale on the order and clears the
// instrument's transient data. The nonce is single use and must not survive.
func (b *base) saveTransaction(order *domain.Order, instrument *domain.PaymentInstrument, tr *domain.TransactionResponse) {
	amount, err := decimal.NewFromString(tr.Amount)
	if err != nil {
		amount = instrument.Amount
	}
	instrument.Transaction = domain.TransactionRecord{
		ID:     tr.ID,
		Amount: amount,
	}
	if tr.Type == "sale" {
		instrument.Transaction.Type = domain.LocalTransactionType(tr.Status)
	}

	order.GatewayOrder = true
	order.PaymentStatus = domain.PaymentStatus(tr.Status)
	instrument.ClearTransientData()
}

// sale builds, sends, and decodes one sale transaction.
func (b *base) sale(ctx context.Context, params braintree.Params) (*domain.TransactionResponse, error) {
	req, err := b.deps.Builder.Build(braintree.OpSale, params)
	if err != nil {
		return nil, err
	}
	response, err := b.deps.Client.Call(ctx, req)
	if err != nil {
		return nil, err
	}
	tx, ok := response["transaction"].(map[string]interface{})
	if !ok {
		return nil, domain.NewGatewayError(domain.ErrorCodeParseError, "transaction missing from sale response")
	}
	return domain.DecodeTransaction(tx), nil
}

// loadOrder resolves the order for authorize, failing soft like the rest of
// the authorize path.
func (b *base) loadOrder(ctx context.Context, orderNo string) *domain.Order {
	order, err := b.deps.Orders.GetOrder(ctx, orderNo)
	if err != nil {
		b.deps.Logger.Error("Order lookup failed",
			zap.String("order_no", orderNo),
			zap.Error(err),
		)
		return nil
	}
	return order
}

func guestCustomerParams(order *domain.Order) *braintree.CustomerParams {
	guest := &braintree.CustomerParams{Email: order.CustomerEmail}
	if billing := order.BillingAddress; billing != nil {
		guest.FirstName = billing.FirstName
		guest.LastName = billing.LastName
		guest.Phone = billing.Phone
	}
	if guest.Phone == "" && order.ShippingAddress != nil {
		guest.Phone = order.ShippingAddress.Phone
	}
	return guest
}

// overrideAddress is the JSON shape the redirect widgets deliver.
type overrideAddress struct {
	RecipientName     string `json:"recipientName"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	StreetAddress     string `json:"streetAddress"`
	ExtendedAddress   string `json:"extendedAddress"`
	Locality          string `json:"locality"`
	Region            string `json:"region"`
	PostalCode        string `json:"postalCode"`
	CountryCodeAlpha2 string `json:"countryCodeAlpha2"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
}

// hasAddressOverride reports whether the blob carries an address. The widget
// sends the literal "{}" when the shopper kept the known address.
func hasAddressOverride(blob string) bool {
	return blob != "" && blob != "{}"
}

func parseAddressOverride(blob string) (*overrideAddress, error) {
	var addr overrideAddress
	if err := json.Unmarshal([]byte(blob), &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

// applyBillingOverride replaces the basket's billing address with the
// shopper-submitted one and updates the order email when provided.
func applyBillingOverride(basket *domain.Basket, addr *overrideAddress) {
	basket.BillingAddress = &domain.Address{
		FirstName:         addr.FirstName,
		LastName:          addr.LastName,
		StreetAddress:     addr.StreetAddress,
		ExtendedAddress:   addr.ExtendedAddress,
		Locality:          addr.Locality,
		Region:            addr.Region,
		PostalCode:        addr.PostalCode,
		CountryCodeAlpha2: strings.ToUpper(addr.CountryCodeAlpha2),
		Phone:             addr.Phone,
	}
	if addr.Email != "" {
		basket.CustomerEmail = addr.Email
	}
}

// applyShippingOverride replaces the basket's shipping address. The widget
// reports the recipient as one display string that is split back into name
// parts.
func applyShippingOverride(basket *domain.Basket, addr *overrideAddress) {
	shipping := &domain.Address{
		StreetAddress:     addr.StreetAddress,
		ExtendedAddress:   addr.ExtendedAddress,
		Locality:          addr.Locality,
		Region:            addr.Region,
		PostalCode:        addr.PostalCode,
		CountryCodeAlpha2: strings.ToUpper(addr.CountryCodeAlpha2),
		Phone:             addr.Phone,
	}
	if addr.RecipientName != "" {
		first, second, last := splitFullName(addr.RecipientName)
		shipping.FirstName = first
		shipping.SecondName = second
		shipping.LastName = last
	}
	basket.ShippingAddress = shipping
}

// splitFullName breaks a display name into first, middle, and last parts. A
// single word is all first name.
func splitFullName(name string) (first, second, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	}
	return parts[0], strings.Join(parts[1:len(parts)-1], " "), parts[len(parts)-1]
}

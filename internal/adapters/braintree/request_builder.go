package braintree

import (
	"fmt"
	"strings"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// Operation selects the request schema Build applies.
type Operation string

const (
	OpClientToken             Operation = "clientToken"
	OpSale                    Operation = "sale"
	OpCreateCustomer          Operation = "createCustomer"
	OpUpdateCustomer          Operation = "updateCustomer"
	OpFindCustomer            Operation = "findCustomer"
	OpCreatePaymentMethod     Operation = "createPaymentMethod"
	OpUpdatePaymentMethod     Operation = "updatePaymentMethod"
	OpDeletePaymentMethod     Operation = "deletePaymentMethod"
	OpFindPaymentMethod       Operation = "findPaymentMethod"
	OpCreateAddress           Operation = "createAddress"
	OpUpdateAddress           Operation = "updateAddress"
	OpDeleteAddress           Operation = "deleteAddress"
	OpSearchTransactionsByIDs Operation = "searchTransactionsByIds"
	OpCloneTransaction        Operation = "cloneTransaction"
)

// Params carries the flat parameter set for one Build call. Scalar values are
// strings; structured values use the types below and the domain package.
//
// Recognized keys per operation are listed in requiredParams plus the
// optional keys Build consults: "customer" (*CustomerParams), "billing" and
// "shipping" (*domain.Address), "descriptor" (*Descriptor), "options"
// (*SaleOptions), "level23" (*Level23), "customFields" (map[string]string),
// "deviceData", "nonce", "token", "threeDSecureRequired" (bool),
// "makeDefault" (bool), "verifyCard" (bool), "failOnDuplicate" (bool),
// "updateExisting" (bool), "cardholderName", "billingAddressId",
// "submitForSettlement" (bool), "source".
type Params map[string]interface{}

// CustomerParams holds the customer subtree fields for vault operations and
// guest sale transactions.
type CustomerParams struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Company   string
	Phone     string
	Fax       string
	Website   string
}

// Descriptor is the merchant text shown on the payer's statement.
type Descriptor struct {
	Name  string
	Phone string
	URL   string
}

// SaleOptions controls the options subtree of a sale transaction.
type SaleOptions struct {
	SubmitForSettlement   bool
	StoreInVault          bool
	StoreInVaultOnSuccess bool
	AddBillingAddress     bool
	PayeeEmail            string
}

// Level23 carries the enhanced-data fields for L2/L3 processing. L2Only
// restricts the block to tax data; the line-item level is disabled for the
// redirect wallets until the gateway resolves its discount rounding problem.
type Level23 struct {
	TaxAmount             string
	ShippingAmount        string
	DiscountAmount        string
	ShippingCountryAlpha3 string
	LineItems             []domain.LineItem
	L2Only                bool
}

var requiredParams = map[Operation][]string{
	OpClientToken:             {"currencyCode"},
	OpSale:                    {"orderId", "amount", "currencyCode"},
	OpCreateCustomer:          {"customer"},
	OpUpdateCustomer:          {"customerId", "customer"},
	OpFindCustomer:            {"customerId"},
	OpCreatePaymentMethod:     {"customerId", "nonce"},
	OpUpdatePaymentMethod:     {"token"},
	OpDeletePaymentMethod:     {"token"},
	OpFindPaymentMethod:       {"token"},
	OpCreateAddress:           {"customerId", "address"},
	OpUpdateAddress:           {"customerId", "addressId", "address"},
	OpDeleteAddress:           {"customerId", "addressId"},
	OpSearchTransactionsByIDs: {"ids"},
	OpCloneTransaction:        {"transactionId", "amount"},
}

// BuilderConfig holds the static settings the builder stamps onto requests.
type BuilderConfig struct {
	// Merchant account ids keyed by upper-case currency code
	MerchantAccounts map[string]string

	// Channel identifier reported on every sale
	Channel string
}

// Builder converts a logical operation plus flat parameters into a request
// document. Building is a pure transform; nothing is sent here.
type Builder struct {
	config BuilderConfig
}

// NewBuilder creates a request document builder.
func NewBuilder(config BuilderConfig) *Builder {
	return &Builder{config: config}
}

// Build validates params against the operation's required fields and
// assembles the request. An empty params set fails with an invalid-request
// error; an unknown operation fails with an unsupported-operation error.
func (b *Builder) Build(op Operation, params Params) (*domain.Request, error) {
	required, ok := requiredParams[op]
	if !ok {
		return nil, domain.NewGatewayError(domain.ErrorCodeUnsupportedOperation, fmt.Sprintf("no request schema for operation %q", op))
	}
	if len(params) == 0 {
		return nil, domain.ErrEmptyParams
	}
	for _, field := range required {
		if !hasValue(params, field) {
			return nil, domain.NewGatewayError(domain.ErrorCodeInvalidRequest, fmt.Sprintf("operation %q requires parameter %q", op, field))
		}
	}

	switch op {
	case OpClientToken:
		return b.buildClientToken(params), nil
	case OpSale:
		return b.buildSale(params), nil
	case OpCreateCustomer:
		return b.buildCreateCustomer(params), nil
	case OpUpdateCustomer:
		return b.buildUpdateCustomer(params), nil
	case OpFindCustomer:
		return &domain.Request{Method: "GET", Path: "customers/" + params.str("customerId")}, nil
	case OpCreatePaymentMethod:
		return b.buildPaymentMethod(params, "POST", "payment_methods"), nil
	case OpUpdatePaymentMethod:
		return b.buildPaymentMethod(params, "PUT", "payment_methods/any/"+params.str("token")), nil
	case OpDeletePaymentMethod:
		return &domain.Request{Method: "DELETE", Path: "payment_methods/any/" + params.str("token")}, nil
	case OpFindPaymentMethod:
		return &domain.Request{Method: "GET", Path: "payment_methods/any/" + params.str("token")}, nil
	case OpCreateAddress:
		return b.buildAddress(params, "POST", "customers/"+params.str("customerId")+"/addresses"), nil
	case OpUpdateAddress:
		return b.buildAddress(params, "PUT", "customers/"+params.str("customerId")+"/addresses/"+params.str("addressId")), nil
	case OpDeleteAddress:
		return &domain.Request{Method: "DELETE", Path: "customers/" + params.str("customerId") + "/addresses/" + params.str("addressId")}, nil
	case OpSearchTransactionsByIDs:
		return b.buildTransactionSearch(params), nil
	case OpCloneTransaction:
		return b.buildTransactionClone(params), nil
	}
	return nil, domain.NewGatewayError(domain.ErrorCodeUnsupportedOperation, fmt.Sprintf("no request schema for operation %q", op))
}

func (b *Builder) buildClientToken(params Params) *domain.Request {
	doc := domain.NewDocument("client_token")
	doc.AddInt("version", "2")
	doc.AddText("merchant-account-id", b.merchantAccount(params.str("currencyCode")))
	return &domain.Request{Method: "POST", Path: "client_token", Body: doc}
}

func (b *Builder) buildSale(params Params) *domain.Request {
	doc := domain.NewDocument("transaction")
	doc.AddText("merchant-account-id", b.merchantAccount(params.str("currencyCode")))
	doc.AddText("type", "sale")
	doc.AddText("order-id", params.str("orderId"))
	doc.AddText("amount", params.str("amount"))

	// Token wins when present; the processor decides which identifier to send
	if token := params.str("token"); token != "" {
		doc.AddText("payment-method-token", token)
	} else {
		doc.AddText("payment-method-nonce", params.str("nonce"))
	}

	if customer, ok := params["customer"].(*CustomerParams); ok && customer != nil {
		doc.AddChild(customerNode("customer", customer))
	}
	doc.AddText("customer-id", params.str("customerId"))

	level23, _ := params["level23"].(*Level23)

	if billing, ok := params["billing"].(*domain.Address); ok && billing != nil {
		doc.AddChild(addressNode("billing", billing, ""))
	}
	if shipping, ok := params["shipping"].(*domain.Address); ok && shipping != nil {
		alpha3 := ""
		if level23 != nil {
			alpha3 = level23.ShippingCountryAlpha3
		}
		doc.AddChild(addressNode("shipping", shipping, alpha3))
	}

	options, _ := params["options"].(*SaleOptions)
	if options == nil {
		options = &SaleOptions{}
	}
	opts := domain.NewDocument("options")
	if options.AddBillingAddress {
		opts.AddBool("add-billing-address-to-payment-method", true)
	}
	if options.StoreInVault {
		opts.AddBool("store-in-vault", true)
	}
	if options.StoreInVaultOnSuccess {
		opts.AddBool("store-in-vault-on-success", true)
	}
	opts.AddBool("submit-for-settlement", options.SubmitForSettlement)
	if required, _ := params["threeDSecureRequired"].(bool); required {
		opts.Add("three_d_secure").AddBool("required", true)
	}
	if options.PayeeEmail != "" {
		opts.Add("paypal").AddText("payee_email", options.PayeeEmail)
	}
	doc.AddChild(opts)

	if descriptor, ok := params["descriptor"].(*Descriptor); ok && descriptor != nil && descriptor.Name != "" {
		desc := domain.NewDocument("descriptor")
		desc.AddText("name", descriptor.Name)
		desc.AddText("phone", descriptor.Phone)
		desc.AddText("url", descriptor.URL)
		doc.AddChild(desc)
	}

	doc.AddText("device-data", params.str("deviceData"))
	doc.AddText("channel", b.config.Channel)

	if fields, ok := params["customFields"].(map[string]string); ok && len(fields) > 0 {
		doc.AddChild(customFieldsNode(fields))
	}

	if level23 != nil {
		doc.AddText("tax-amount", level23.TaxAmount)
		if !level23.L2Only {
			doc.AddText("shipping-amount", level23.ShippingAmount)
			doc.AddText("discount-amount", level23.DiscountAmount)
			doc.AddChild(lineItemsNode(level23.LineItems))
		}
	}

	source := params.str("source")
	if source == "" {
		source = "unscheduled"
	}
	doc.AddText("transaction-source", source)

	return &domain.Request{Method: "POST", Path: "transactions", Body: doc}
}

func (b *Builder) buildCreateCustomer(params Params) *domain.Request {
	customer := params["customer"].(*CustomerParams)
	doc := customerNode("customer", customer)
	doc.AddText("website", customer.Website)
	doc.AddText("payment-method-nonce", params.str("nonce"))
	if payeeEmail := params.str("payeeEmail"); payeeEmail != "" {
		doc.Add("options").Add("paypal").AddText("payee-email", payeeEmail)
	}
	return &domain.Request{Method: "POST", Path: "customers", Body: doc}
}

func (b *Builder) buildUpdateCustomer(params Params) *domain.Request {
	customer := params["customer"].(*CustomerParams)
	doc := domain.NewDocument("customer")
	doc.AddText("first-name", customer.FirstName)
	doc.AddText("last-name", customer.LastName)
	doc.AddText("email", customer.Email)
	doc.AddText("company", customer.Company)
	doc.AddText("phone", customer.Phone)
	doc.AddText("fax", customer.Fax)
	doc.AddText("website", customer.Website)
	return &domain.Request{Method: "PUT", Path: "customers/" + params.str("customerId"), Body: doc}
}

func (b *Builder) buildPaymentMethod(params Params, method, path string) *domain.Request {
	doc := domain.NewDocument("payment-method")
	doc.AddText("customer-id", params.str("customerId"))
	doc.AddText("payment-method-nonce", params.str("nonce"))

	billingAddress, _ := params["billingAddress"].(*domain.Address)
	if billingAddress != nil {
		addr := addressNode("billing-address", billingAddress, "")
		if update, _ := params["updateExisting"].(bool); update {
			addr.Add("options").AddBool("update-existing", true)
		}
		doc.AddChild(addr)
	} else {
		// An inline address replaces any referenced one
		doc.AddText("billing-address-id", params.str("billingAddressId"))
	}

	doc.AddText("cardholder-name", params.str("cardholderName"))

	opts := domain.NewDocument("options")
	if makeDefault, _ := params["makeDefault"].(bool); makeDefault {
		opts.AddBool("make-default", true)
	}
	if failOnDup, _ := params["failOnDuplicate"].(bool); failOnDup {
		opts.AddBool("fail-on-duplicate-payment-method", true)
	}
	if verify, _ := params["verifyCard"].(bool); verify {
		opts.AddBool("verify-card", true)
	}
	doc.AddChild(opts)

	return &domain.Request{Method: method, Path: path, Body: doc}
}

func (b *Builder) buildAddress(params Params, method, path string) *domain.Request {
	address := params["address"].(*domain.Address)
	return &domain.Request{Method: method, Path: path, Body: addressNode("address", address, "")}
}

func (b *Builder) buildTransactionSearch(params Params) *domain.Request {
	ids, _ := params["ids"].([]string)
	doc := domain.NewDocument("search")
	idsNode := &domain.Document{Name: "ids", Type: domain.NodeTypeArray}
	for _, id := range ids {
		idsNode.AddText("item", id)
	}
	doc.AddChild(idsNode)
	return &domain.Request{Method: "POST", Path: "transactions/advanced_search", Body: doc}
}

func (b *Builder) buildTransactionClone(params Params) *domain.Request {
	doc := domain.NewDocument("transaction-clone")
	doc.AddText("amount", params.str("amount"))
	if submit, _ := params["submitForSettlement"].(bool); submit {
		doc.Add("options").AddBool("submit-for-settlement", true)
	}
	return &domain.Request{Method: "POST", Path: "transactions/" + params.str("transactionId") + "/clone", Body: doc}
}

func (b *Builder) merchantAccount(currencyCode string) string {
	return b.config.MerchantAccounts[strings.ToUpper(currencyCode)]
}

func customerNode(name string, customer *CustomerParams) *domain.Document {
	doc := domain.NewDocument(name)
	doc.AddText("id", customer.ID)
	doc.AddText("first-name", customer.FirstName)
	doc.AddText("last-name", customer.LastName)
	doc.AddText("email", customer.Email)
	doc.AddText("company", customer.Company)
	doc.AddText("phone", customer.Phone)
	doc.AddText("fax", customer.Fax)
	return doc
}

func addressNode(name string, addr *domain.Address, countryAlpha3 string) *domain.Document {
	doc := domain.NewDocument(name)
	doc.AddText("first-name", addr.FirstName)
	doc.AddText("last-name", addr.LastName)
	doc.AddText("company", addr.Company)
	doc.AddText("street-address", addr.StreetAddress)
	doc.AddText("extended-address", addr.ExtendedAddress)
	doc.AddText("locality", addr.Locality)
	doc.AddText("region", addr.Region)
	doc.AddText("postal-code", addr.PostalCode)
	if countryAlpha3 != "" {
		doc.AddText("country-code-alpha3", countryAlpha3)
	} else {
		doc.AddText("country-code-alpha2", addr.CountryCodeAlpha2)
	}
	doc.AddText("country-name", addr.CountryName)
	return doc
}

func customFieldsNode(fields map[string]string) *domain.Document {
	doc := domain.NewDocument("custom-fields")
	for _, name := range sortedKeys(fields) {
		doc.AddText(name, fields[name])
	}
	return doc
}

func lineItemsNode(items []domain.LineItem) *domain.Document {
	if len(items) == 0 {
		return nil
	}
	doc := &domain.Document{Name: "line-items", Type: domain.NodeTypeArray}
	for _, item := range items {
		node := doc.Add("line-item")
		node.AddText("name", item.Name)
		node.AddText("kind", "debit")
		node.AddText("quantity", item.Quantity)
		node.AddText("unit-amount", item.UnitAmount)
		node.AddText("unit-of-measure", item.UnitOfMeasure)
		node.AddText("total-amount", item.TotalAmount)
		node.AddText("tax-amount", item.TaxAmount)
		node.AddText("discount-amount", item.DiscountAmount)
		node.AddText("product-code", item.ProductCode)
		node.AddText("commodity-code", item.CommodityCode)
	}
	return doc
}

func (p Params) str(key string) string {
	s, _ := p[key].(string)
	return s
}

func hasValue(params Params, field string) bool {
	value, ok := params[field]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	}
	return true
}

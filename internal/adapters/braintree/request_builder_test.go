package braintree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

func testBuilder() *Builder {
	return NewBuilder(BuilderConfig{
		MerchantAccounts: map[string]string{"USD": "acct-usd", "EUR": "acct-eur"},
		Channel:          "storebridge-go",
	})
}

func saleParams() Params {
	return Params{
		"orderId":      "00001001",
		"amount":       "42.50",
		"currencyCode": "USD",
		"nonce":        "fake-nonce",
	}
}

// TestBuild_UnknownOperation tests that an unregistered operation is rejected
func TestBuild_UnknownOperation(t *testing.T) {
	_, err := testBuilder().Build(Operation("refundEverything"), Params{"x": "y"})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeUnsupportedOperation, domain.GetErrorCode(err))
}

// TestBuild_EmptyParams tests the empty parameter set rejection
func TestBuild_EmptyParams(t *testing.T) {
	_, err := testBuilder().Build(OpSale, Params{})

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidRequest, domain.GetErrorCode(err))
}

// TestBuild_MissingRequiredField tests that a missing required parameter
// fails with an error naming the field
func TestBuild_MissingRequiredField(t *testing.T) {
	params := saleParams()
	delete(params, "amount")

	_, err := testBuilder().Build(OpSale, params)

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidRequest, domain.GetErrorCode(err))
	assert.Contains(t, err.Error(), "amount")
}

// TestBuildSale_TokenWinsOverNonce tests the identifier precedence in the
// sale document
func TestBuildSale_TokenWinsOverNonce(t *testing.T) {
	params := saleParams()
	params["token"] = "stored-token"

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	out := string(Serialize(req.Body))
	assert.Contains(t, out, "<payment-method-token>stored-token</payment-method-token>")
	assert.NotContains(t, out, "payment-method-nonce")
}

// TestBuildSale_NonceWhenNoToken tests the nonce path
func TestBuildSale_NonceWhenNoToken(t *testing.T) {
	req, err := testBuilder().Build(OpSale, saleParams())
	require.NoError(t, err)

	out := string(Serialize(req.Body))
	assert.Contains(t, out, "<payment-method-nonce>fake-nonce</payment-method-nonce>")
	assert.NotContains(t, out, "payment-method-token")
}

// TestBuildSale_MerchantAccountPerCurrency tests currency routing
func TestBuildSale_MerchantAccountPerCurrency(t *testing.T) {
	params := saleParams()
	params["currencyCode"] = "EUR"

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	assert.Contains(t, string(Serialize(req.Body)), "<merchant-account-id>acct-eur</merchant-account-id>")
}

// TestBuildSale_VaultOptions tests the conditional vault flags
func TestBuildSale_VaultOptions(t *testing.T) {
	params := saleParams()
	params["options"] = &SaleOptions{
		SubmitForSettlement:   true,
		StoreInVaultOnSuccess: true,
		AddBillingAddress:     true,
	}

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	out := string(Serialize(req.Body))
	assert.Contains(t, out, `<store-in-vault-on-success type="boolean">true</store-in-vault-on-success>`)
	assert.Contains(t, out, `<add-billing-address-to-payment-method type="boolean">true</add-billing-address-to-payment-method>`)
	assert.Contains(t, out, `<submit-for-settlement type="boolean">true</submit-for-settlement>`)
	assert.NotContains(t, out, "<store-in-vault type=")
}

// TestBuildSale_ThreeDSecureOption tests the step-up requirement flag
func TestBuildSale_ThreeDSecureOption(t *testing.T) {
	params := saleParams()
	params["threeDSecureRequired"] = true

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	assert.Contains(t, string(Serialize(req.Body)),
		`<three_d_secure><required type="boolean">true</required></three_d_secure>`)
}

// TestBuildSale_CustomFieldsSorted tests deterministic custom field order
func TestBuildSale_CustomFieldsSorted(t *testing.T) {
	params := saleParams()
	params["customFields"] = map[string]string{
		"zeta":  "z",
		"alpha": "a",
		"mid":   "m",
	}

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	out := string(Serialize(req.Body))
	alpha := strings.Index(out, "<alpha>")
	mid := strings.Index(out, "<mid>")
	zeta := strings.Index(out, "<zeta>")
	require.True(t, alpha > 0 && mid > 0 && zeta > 0)
	assert.Less(t, alpha, mid)
	assert.Less(t, mid, zeta)
}

// TestBuildSale_LevelTwoOnly tests that the restricted enhanced-data mode
// keeps tax but drops shipping, discount, and line items
func TestBuildSale_LevelTwoOnly(t *testing.T) {
	params := saleParams()
	params["level23"] = &Level23{
		TaxAmount:      "3.21",
		ShippingAmount: "4.99",
		DiscountAmount: "1.00",
		LineItems:      []domain.LineItem{{Name: "Widget", Quantity: "1", TotalAmount: "42.50"}},
		L2Only:         true,
	}

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	out := string(Serialize(req.Body))
	assert.Contains(t, out, "<tax-amount>3.21</tax-amount>")
	assert.NotContains(t, out, "shipping-amount")
	assert.NotContains(t, out, "discount-amount")
	assert.NotContains(t, out, "line-items")
}

// TestBuildSale_FullEnhancedData tests the full line-item mode
func TestBuildSale_FullEnhancedData(t *testing.T) {
	params := saleParams()
	params["level23"] = &Level23{
		TaxAmount:      "3.21",
		ShippingAmount: "4.99",
		DiscountAmount: "1.00",
		LineItems:      []domain.LineItem{{Name: "Widget", Quantity: "1", TotalAmount: "42.50"}},
	}

	req, err := testBuilder().Build(OpSale, params)
	require.NoError(t, err)

	out := string(Serialize(req.Body))
	assert.Contains(t, out, "<shipping-amount>4.99</shipping-amount>")
	assert.Contains(t, out, "<discount-amount>1.00</discount-amount>")
	assert.Contains(t, out, "<name>Widget</name>")
	assert.Contains(t, out, "<kind>debit</kind>")
}

// TestBuildSale_TransactionSourceDefault tests the default source marker
func TestBuildSale_TransactionSourceDefault(t *testing.T) {
	req, err := testBuilder().Build(OpSale, saleParams())
	require.NoError(t, err)

	assert.Contains(t, string(Serialize(req.Body)), "<transaction-source>unscheduled</transaction-source>")
}

// TestBuild_FindCustomerPath tests path construction for a GET operation
func TestBuild_FindCustomerPath(t *testing.T) {
	req, err := testBuilder().Build(OpFindCustomer, Params{"customerId": "site_0001"})
	require.NoError(t, err)

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "customers/site_0001", req.Path)
	assert.Nil(t, req.Body)
}

// TestBuild_TransactionSearchDocument tests the ids array document
func TestBuild_TransactionSearchDocument(t *testing.T) {
	req, err := testBuilder().Build(OpSearchTransactionsByIDs, Params{"ids": []string{"t1", "t2"}})
	require.NoError(t, err)

	assert.Equal(t, "transactions/advanced_search", req.Path)
	assert.Equal(t,
		`<search><ids type="array"><item>t1</item><item>t2</item></ids></search>`,
		string(Serialize(req.Body)))
}

// TestBuild_DeletePaymentMethodPath tests the token-addressed DELETE
func TestBuild_DeletePaymentMethodPath(t *testing.T) {
	req, err := testBuilder().Build(OpDeletePaymentMethod, Params{"token": "tok123"})
	require.NoError(t, err)

	assert.Equal(t, "DELETE", req.Method)
	assert.Equal(t, "payment_methods/any/tok123", req.Path)
}

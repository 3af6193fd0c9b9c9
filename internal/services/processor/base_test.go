package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// TestHasAddressOverride tests the empty-object marker the redirect widgets
// send when the shopper kept the known address
func TestHasAddressOverride(t *testing.T) {
	assert.False(t, hasAddressOverride(""))
	assert.False(t, hasAddressOverride("{}"))
	assert.True(t, hasAddressOverride(`{"locality":"Portland"}`))
}

// TestSplitFullName tests the recipient display-name split
func TestSplitFullName(t *testing.T) {
	first, second, last := splitFullName("Jo Shopper")
	assert.Equal(t, "Jo", first)
	assert.Empty(t, second)
	assert.Equal(t, "Shopper", last)

	first, second, last = splitFullName("Jo van der Shopper")
	assert.Equal(t, "Jo", first)
	assert.Equal(t, "van der", second)
	assert.Equal(t, "Shopper", last)

	first, second, last = splitFullName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, second)
	assert.Empty(t, last)
}

// TestApplyShippingOverride tests widget address mapping including name split
// and country normalization
func TestApplyShippingOverride(t *testing.T) {
	basket := &domain.Basket{}
	addr, err := parseAddressOverride(`{
		"recipientName": "Jo Shopper",
		"streetAddress": "1 Main St",
		"locality": "Portland",
		"region": "OR",
		"postalCode": "97201",
		"countryCodeAlpha2": "us"
	}`)
	require.NoError(t, err)

	applyShippingOverride(basket, addr)

	shipping := basket.ShippingAddress
	require.NotNil(t, shipping)
	assert.Equal(t, "Jo", shipping.FirstName)
	assert.Equal(t, "Shopper", shipping.LastName)
	assert.Equal(t, "US", shipping.CountryCodeAlpha2)
	assert.Equal(t, "Portland", shipping.Locality)
}

// TestApplyBillingOverride tests that a widget email updates the order email
func TestApplyBillingOverride(t *testing.T) {
	basket := &domain.Basket{CustomerEmail: "old@example.com"}
	addr, err := parseAddressOverride(`{"firstName":"Jo","lastName":"Shopper","email":"new@example.com"}`)
	require.NoError(t, err)

	applyBillingOverride(basket, addr)

	assert.Equal(t, "new@example.com", basket.CustomerEmail)
	assert.Equal(t, "Jo", basket.BillingAddress.FirstName)
}

package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/adapters/memory"
	"github.com/storebridge/braintree-checkout/internal/domain"
)

// fakeGateway scripts responses per request path
type fakeGateway struct {
	responses map[string]map[string]interface{}
	errs      map[string]error
	calls     []string
}

func (f *fakeGateway) Call(_ context.Context, req *domain.Request) (map[string]interface{}, error) {
	f.calls = append(f.calls, req.Method+" "+req.Path)
	if err, ok := f.errs[req.Path]; ok {
		return nil, err
	}
	if resp, ok := f.responses[req.Path]; ok {
		return resp, nil
	}
	return map[string]interface{}{}, nil
}

func testReconciler(gateway *fakeGateway, siteID string) *Reconciler {
	builder := braintree.NewBuilder(braintree.BuilderConfig{})
	return NewReconciler(gateway, builder, memory.NewSessionStore(), siteID, zap.NewNop())
}

func registeredOrder(customerNo string) *domain.Order {
	return &domain.Order{
		OrderNo:       "00001001",
		CustomerEmail: "jo@example.com",
		Customer: &domain.Customer{
			Registered: true,
			Profile: &domain.Profile{
				CustomerNo:  customerNo,
				FirstName:   "Jo",
				LastName:    "Shopper",
				Email:       "jo@example.com",
				PhoneMobile: "555-0100",
			},
		},
		BillingAddress: &domain.Address{FirstName: "Jo", LastName: "Shopper", Phone: "555-0199"},
	}
}

// TestCustomerID_Derivation tests the site-prefixed id format
func TestCustomerID_Derivation(t *testing.T) {
	r := testReconciler(&fakeGateway{}, "NorthSite")

	assert.Equal(t, "northsite_00012345", r.CustomerID("00012345"))
}

// TestCustomerID_TruncatesLongSiteID tests that the derived id never exceeds
// the gateway's length cap
func TestCustomerID_TruncatesLongSiteID(t *testing.T) {
	r := testReconciler(&fakeGateway{}, "averyveryverylongsiteidentifierhere")

	id := r.CustomerID("00012345")

	assert.LessOrEqual(t, len(id), 31)
	assert.Equal(t, "averyveryverylongsitei_00012345", id)
}

// TestCustomerExists_GuestIsNeverVaulted tests the guest short-circuit
func TestCustomerExists_GuestIsNeverVaulted(t *testing.T) {
	gateway := &fakeGateway{}
	r := testReconciler(gateway, "site")

	assert.False(t, r.CustomerExists(context.Background(), nil))
	assert.False(t, r.CustomerExists(context.Background(), &domain.Customer{Registered: false}))
	assert.Empty(t, gateway.calls)
}

// TestCustomerExists_MemoizesRemoteCheck tests that one session performs the
// remote lookup only once, for hits and for misses
func TestCustomerExists_MemoizesRemoteCheck(t *testing.T) {
	gateway := &fakeGateway{
		responses: map[string]map[string]interface{}{
			"customers/site_123": {"customer": map[string]interface{}{"id": "site_123"}},
		},
	}
	r := testReconciler(gateway, "site")
	customer := &domain.Customer{Registered: true, Profile: &domain.Profile{CustomerNo: "123"}}

	assert.True(t, r.CustomerExists(context.Background(), customer))
	assert.True(t, r.CustomerExists(context.Background(), customer))
	assert.True(t, r.CustomerExists(context.Background(), customer))

	assert.Len(t, gateway.calls, 1)
}

// TestCustomerExists_CachesNegativeResult tests negative memoization
func TestCustomerExists_CachesNegativeResult(t *testing.T) {
	gateway := &fakeGateway{
		errs: map[string]error{
			"customers/site_456": domain.ErrCustomerNotFound,
		},
	}
	r := testReconciler(gateway, "site")
	customer := &domain.Customer{Registered: true, Profile: &domain.Profile{CustomerNo: "456"}}

	assert.False(t, r.CustomerExists(context.Background(), customer))
	assert.False(t, r.CustomerExists(context.Background(), customer))

	assert.Len(t, gateway.calls, 1)
}

// TestEnsureCustomer_ExistingRecord tests that a vaulted customer triggers no
// create call
func TestEnsureCustomer_ExistingRecord(t *testing.T) {
	gateway := &fakeGateway{
		responses: map[string]map[string]interface{}{
			"customers/site_123": {"customer": map[string]interface{}{"id": "site_123"}},
		},
	}
	r := testReconciler(gateway, "site")
	order := registeredOrder("123")

	result := r.EnsureCustomer(context.Background(), order, "")

	assert.Empty(t, result.Error)
	assert.Equal(t, "site_123", result.CustomerID)
	require.Len(t, gateway.calls, 1)
	assert.Equal(t, "GET customers/site_123", gateway.calls[0])
}

// TestEnsureCustomer_CreatesMissingRecord tests the create path and that the
// gateway-assigned id wins
func TestEnsureCustomer_CreatesMissingRecord(t *testing.T) {
	gateway := &fakeGateway{
		errs: map[string]error{
			"customers/site_123": domain.ErrCustomerNotFound,
		},
		responses: map[string]map[string]interface{}{
			"customers": {"customer": map[string]interface{}{"id": "site_123"}},
		},
	}
	r := testReconciler(gateway, "site")
	order := registeredOrder("123")

	result := r.EnsureCustomer(context.Background(), order, "")

	assert.Empty(t, result.Error)
	assert.Equal(t, "site_123", result.CustomerID)
	require.Len(t, gateway.calls, 2)
	assert.Equal(t, "POST customers", gateway.calls[1])

	// The create is cached; a following existence check stays local
	assert.True(t, r.CustomerExists(context.Background(), order.Customer))
	assert.Len(t, gateway.calls, 2)
}

// TestEnsureCustomer_FailureBecomesMessage tests that a failed create comes
// back as a shopper message, not an error
func TestEnsureCustomer_FailureBecomesMessage(t *testing.T) {
	gwErr := domain.NewGatewayError(domain.ErrorCodeAPIError, "generic")
	gwErr.Messages = []string{"Customer could not be created."}
	gateway := &fakeGateway{
		errs: map[string]error{
			"customers/site_123": domain.ErrCustomerNotFound,
			"customers":          gwErr,
		},
	}
	r := testReconciler(gateway, "site")

	result := r.EnsureCustomer(context.Background(), registeredOrder("123"), "")

	assert.Equal(t, "Customer could not be created.", result.Error)
	assert.Empty(t, result.CustomerID)
}

// TestCreatePaymentMethod_ReturnsToken tests nonce-to-token exchange across
// the account flavors
func TestCreatePaymentMethod_ReturnsToken(t *testing.T) {
	gateway := &fakeGateway{
		responses: map[string]map[string]interface{}{
			"customers/site_123": {"customer": map[string]interface{}{"id": "site_123"}},
			"payment_methods":    {"paypalAccount": map[string]interface{}{"token": "tok-pp"}},
		},
	}
	r := testReconciler(gateway, "site")

	token, err := r.CreatePaymentMethod(context.Background(), "fake-nonce", registeredOrder("123"), "merchant@example.com")
	require.NoError(t, err)

	assert.Equal(t, "tok-pp", token)
}

// TestCreatePaymentMethod_MissingToken tests the parse failure when no
// account block carries a token
func TestCreatePaymentMethod_MissingToken(t *testing.T) {
	gateway := &fakeGateway{
		responses: map[string]map[string]interface{}{
			"customers/site_123": {"customer": map[string]interface{}{"id": "site_123"}},
			"payment_methods":    {},
		},
	}
	r := testReconciler(gateway, "site")

	_, err := r.CreatePaymentMethod(context.Background(), "fake-nonce", registeredOrder("123"), "")

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeParseError, domain.GetErrorCode(err))
}

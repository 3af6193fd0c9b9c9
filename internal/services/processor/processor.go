// Package processor implements the per-method payment state machines that
// drive a basket through handle and authorize.
package processor

import (
	"context"

	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/config"
	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
	"github.com/storebridge/braintree-checkout/internal/services/customfields"
	"github.com/storebridge/braintree-checkout/internal/services/vault"
)

// HandleParams carries the client-submitted checkout form values one handle
// call stages onto a fresh payment instrument.
type HandleParams struct {
	// Single-use client token; required unless a stored method is selected
	Nonce string

	// Opaque fraud signal from the client-side data collector
	DeviceData string

	// Id of a previously stored method, or "new" for a fresh credential
	SelectedMethodID string

	MakeDefault          bool
	SaveMethod           bool
	ThreeDSecureRequired bool

	// Raw custom fields attached by the storefront widget
	CustomFields map[string]string

	// Shopper-submitted address overrides as JSON blobs; "{}" means none
	BillingAddressJSON  string
	ShippingAddressJSON string

	// Stored-card form fields
	CardType   string
	CardHolder string

	// Wallet account email reported by the redirect widget
	Email string
}

// HandleResult reports whether staging the instrument succeeded. The caller
// must check Error before advancing the checkout.
type HandleResult struct {
	Error      bool
	Instrument *domain.PaymentInstrument
}

// AuthorizeResult is always authorized; a failed gateway call is reported
// through the instrument's FailReason so the checkout pipeline proceeds
// uniformly and decides itself how to re-prompt the shopper.
type AuthorizeResult struct {
	Authorized bool
}

// Processor is the per-method handle/authorize state machine.
type Processor interface {
	Method() domain.PaymentMethod
	Handle(ctx context.Context, basket *domain.Basket, params *HandleParams, fromExpressFlow bool) HandleResult
	Authorize(ctx context.Context, orderNo string, instrument *domain.PaymentInstrument) AuthorizeResult
}

// Deps bundles the collaborators every processor shares.
type Deps struct {
	Client  ports.GatewayClient
	Builder *braintree.Builder
	Vault   *vault.Reconciler
	Fields  *customfields.Resolver
	Orders  ports.OrderResolver
	Session ports.SessionStore
	Payment config.PaymentConfig
	Logger  *zap.Logger
}

// Registry dispatches to the processor registered for a payment method.
type Registry struct {
	processors map[domain.PaymentMethod]Processor
}

// NewRegistry creates a registry over the given processors.
func NewRegistry(processors ...Processor) *Registry {
	m := make(map[domain.PaymentMethod]Processor, len(processors))
	for _, p := range processors {
		m[p.Method()] = p
	}
	return &Registry{processors: m}
}

// For returns the processor for a method, or nil when none is registered.
func (r *Registry) For(method domain.PaymentMethod) Processor {
	return r.processors[method]
}

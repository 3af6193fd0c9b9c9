// Package vault reconciles local customers with their gateway-side vault
// records.
package vault

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/adapters/braintree"
	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

// The gateway caps customer ids at 31 characters
const maxCustomerIDLength = 31

const existsKeyPrefix = "vault:exists:"

// Result reports the outcome of a vault mutation. A failed vault call never
// aborts the surrounding sale, so failures come back as a message instead of
// an error.
type Result struct {
	CustomerID string
	Error      string
}

// Reconciler checks and creates gateway-side customer records. Existence
// checks are memoized per session in both directions since they are remote
// and idempotent within one checkout flow.
type Reconciler struct {
	client   ports.GatewayClient
	builder  *braintree.Builder
	sessions ports.SessionStore
	siteID   string
	logger   *zap.Logger
}

// NewReconciler creates a vault reconciler for one site.
func NewReconciler(client ports.GatewayClient, builder *braintree.Builder, sessions ports.SessionStore, siteID string, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		client:   client,
		builder:  builder,
		sessions: sessions,
		siteID:   siteID,
		logger:   logger,
	}
}

// CustomerID derives the stable external customer id: lower-cased site id
// plus customer number, with the site id truncated so the whole id fits the
// gateway's length cap.
func (r *Reconciler) CustomerID(customerNo string) string {
	siteID := strings.ToLower(r.siteID)
	allowed := maxCustomerIDLength - len(customerNo) - 1
	if allowed < 0 {
		allowed = 0
	}
	if len(siteID) > allowed {
		siteID = siteID[:allowed]
	}
	return siteID + "_" + customerNo
}

// CustomerExists reports whether the customer has a vault record. Guests
// never do. The first remote check per session is cached, true or false.
func (r *Reconciler) CustomerExists(ctx context.Context, customer *domain.Customer) bool {
	if customer == nil || !customer.Registered || customer.Profile == nil {
		return false
	}
	customerID := r.CustomerID(customer.Profile.CustomerNo)
	key := existsKeyPrefix + customerID

	if cached, ok, err := r.sessions.Get(ctx, key); err == nil && ok {
		return cached == "true"
	}

	exists := r.remoteCustomerExists(ctx, customerID)
	value := "false"
	if exists {
		value = "true"
	}
	if err := r.sessions.Set(ctx, key, value); err != nil {
		r.logger.Warn("Failed to cache vault existence",
			zap.String("customer_id", customerID),
			zap.Error(err),
		)
	}
	return exists
}

func (r *Reconciler) remoteCustomerExists(ctx context.Context, customerID string) bool {
	req, err := r.builder.Build(braintree.OpFindCustomer, braintree.Params{"customerId": customerID})
	if err != nil {
		r.logger.Error("Failed to build customer lookup", zap.Error(err))
		return false
	}
	if _, err := r.client.Call(ctx, req); err != nil {
		if !domain.IsNotFound(err) {
			r.logger.Warn("Vault customer lookup failed",
				zap.String("customer_id", customerID),
				zap.Error(err),
			)
		}
		return false
	}
	return true
}

// EnsureCustomer creates the vault record when absent and returns the
// external customer id. Registered customers contribute their profile contact
// fields, falling back to order address phones; guests contribute only
// billing name and phone plus the order email.
func (r *Reconciler) EnsureCustomer(ctx context.Context, order *domain.Order, payeeEmail string) Result {
	customer := order.Customer
	if r.CustomerExists(ctx, customer) {
		return Result{CustomerID: r.CustomerID(customer.Profile.CustomerNo)}
	}

	data := r.customerParams(order)
	params := braintree.Params{"customer": data}
	if payeeEmail != "" {
		params["payeeEmail"] = payeeEmail
	}

	req, err := r.builder.Build(braintree.OpCreateCustomer, params)
	if err != nil {
		return Result{Error: domain.UserMessages(err)[0]}
	}
	response, err := r.client.Call(ctx, req)
	if err != nil {
		r.logger.Error("Vault customer create failed", zap.Error(err))
		return Result{Error: domain.UserMessages(err)[0]}
	}

	customerID := data.ID
	if created, ok := response["customer"].(map[string]interface{}); ok {
		if id, ok := created["id"].(string); ok && id != "" {
			customerID = id
		}
	}

	if customer != nil && customer.Registered {
		if err := r.sessions.Set(ctx, existsKeyPrefix+customerID, "true"); err != nil {
			r.logger.Warn("Failed to cache vault existence", zap.Error(err))
		}
	}
	return Result{CustomerID: customerID}
}

// CreatePaymentMethod exchanges a nonce for a stable vault token, creating
// the customer record first when needed. Used by the deferred-capture flow.
func (r *Reconciler) CreatePaymentMethod(ctx context.Context, nonce string, order *domain.Order, payeeEmail string) (string, error) {
	result := r.EnsureCustomer(ctx, order, payeeEmail)
	if result.Error != "" {
		return "", domain.NewGatewayError(domain.ErrorCodeAPIError, result.Error)
	}

	req, err := r.builder.Build(braintree.OpCreatePaymentMethod, braintree.Params{
		"customerId": result.CustomerID,
		"nonce":      nonce,
	})
	if err != nil {
		return "", err
	}
	response, err := r.client.Call(ctx, req)
	if err != nil {
		return "", err
	}

	for _, key := range []string{"paypalAccount", "creditCard", "venmoAccount", "applePayCard"} {
		if account, ok := response[key].(map[string]interface{}); ok {
			if token, ok := account["token"].(string); ok && token != "" {
				return token, nil
			}
		}
	}
	return "", domain.NewGatewayError(domain.ErrorCodeParseError, "payment method token missing from response")
}

func (r *Reconciler) customerParams(order *domain.Order) *braintree.CustomerParams {
	customer := order.Customer
	billing := order.BillingAddress
	shipping := order.ShippingAddress

	if customer != nil && customer.Registered && customer.Profile != nil {
		profile := customer.Profile
		phone := profile.Phone()
		if phone == "" && billing != nil {
			phone = billing.Phone
		}
		if phone == "" && shipping != nil {
			phone = shipping.Phone
		}
		return &braintree.CustomerParams{
			ID:        r.CustomerID(profile.CustomerNo),
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Email:     profile.Email,
			Company:   profile.Company,
			Phone:     phone,
			Fax:       profile.Fax,
		}
	}

	guest := &braintree.CustomerParams{Email: order.CustomerEmail}
	if billing != nil {
		guest.FirstName = billing.FirstName
		guest.LastName = billing.LastName
		guest.Phone = billing.Phone
	}
	if guest.Phone == "" && shipping != nil {
		guest.Phone = shipping.Phone
	}
	return guest
}

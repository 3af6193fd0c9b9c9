package ports

import (
	"context"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// OpenOrder is one gateway-originated order still awaiting a terminal status.
type OpenOrder struct {
	OrderNo       string
	TransactionID string
}

// OrderRepository exposes the order records the status sync job reconciles.
// Each UpdatePaymentStatuses call runs in its own transaction so a failed
// batch never corrupts a completed one.
type OrderRepository interface {
	ListOpenGatewayOrders(ctx context.Context) ([]OpenOrder, error)
	UpdatePaymentStatuses(ctx context.Context, statuses map[string]domain.TransactionStatus) error
}

// OrderResolver loads the order aggregate for an order number during
// authorization.
type OrderResolver interface {
	GetOrder(ctx context.Context, orderNo string) (*domain.Order, error)
}

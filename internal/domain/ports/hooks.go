package ports

import (
	"context"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

// CustomFieldsHook contributes dynamic custom fields for a sale transaction.
// The resolver invokes it after applying configured static fields; a nil hook
// contributes nothing.
type CustomFieldsHook interface {
	CustomFields(ctx context.Context, method domain.PaymentMethod, order *domain.Order, instrument *domain.PaymentInstrument) map[string]string
}

// Package customfields merges configured, hook-provided, and
// instrument-attached custom fields for sale transactions.
package customfields

import (
	"context"
	"strings"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

// Resolver assembles the custom-fields map for one transaction. Precedence:
// configured static fields first, hook values override them, fields already
// attached to the instrument fill only names still unset.
type Resolver struct {
	static map[domain.PaymentMethod][]string
	hook   ports.CustomFieldsHook
}

// NewResolver creates a resolver. Static fields are "name:value" entries per
// payment method; hook may be nil.
func NewResolver(static map[domain.PaymentMethod][]string, hook ports.CustomFieldsHook) *Resolver {
	return &Resolver{static: static, hook: hook}
}

// Resolve returns the merged custom fields for the instrument's method.
func (r *Resolver) Resolve(ctx context.Context, order *domain.Order, instrument *domain.PaymentInstrument) map[string]string {
	fields := make(map[string]string)

	for _, entry := range r.static[instrument.Method] {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) == 2 && parts[0] != "" {
			fields[parts[0]] = parts[1]
		}
	}

	if r.hook != nil {
		for name, value := range r.hook.CustomFields(ctx, instrument.Method, order, instrument) {
			fields[name] = value
		}
	}

	for name, value := range instrument.CustomFields {
		if _, ok := fields[name]; !ok {
			fields[name] = value
		}
	}

	return fields
}

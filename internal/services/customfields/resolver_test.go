package customfields

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storebridge/braintree-checkout/internal/domain"
)

type fixedHook struct {
	fields map[string]string
}

func (h *fixedHook) CustomFields(_ context.Context, _ domain.PaymentMethod, _ *domain.Order, _ *domain.PaymentInstrument) map[string]string {
	return h.fields
}

// TestResolve_StaticFieldsOnly tests parsing of configured name:value entries
func TestResolve_StaticFieldsOnly(t *testing.T) {
	r := NewResolver(map[domain.PaymentMethod][]string{
		domain.MethodCreditCard: {"store_id:main", "channel:web", "broken-entry", ":novalue"},
	}, nil)
	instrument := &domain.PaymentInstrument{Method: domain.MethodCreditCard}

	fields := r.Resolve(context.Background(), &domain.Order{}, instrument)

	assert.Equal(t, map[string]string{"store_id": "main", "channel": "web"}, fields)
}

// TestResolve_HookOverridesStatic tests that hook fields win over configured
// ones
func TestResolve_HookOverridesStatic(t *testing.T) {
	r := NewResolver(map[domain.PaymentMethod][]string{
		domain.MethodPayPal: {"channel:web"},
	}, &fixedHook{fields: map[string]string{"channel": "mobile", "session": "s1"}})
	instrument := &domain.PaymentInstrument{Method: domain.MethodPayPal}

	fields := r.Resolve(context.Background(), &domain.Order{}, instrument)

	assert.Equal(t, "mobile", fields["channel"])
	assert.Equal(t, "s1", fields["session"])
}

// TestResolve_InstrumentFillsOnlyUnset tests that instrument-attached fields
// never override resolved ones
func TestResolve_InstrumentFillsOnlyUnset(t *testing.T) {
	r := NewResolver(map[domain.PaymentMethod][]string{
		domain.MethodCreditCard: {"channel:web"},
	}, nil)
	instrument := &domain.PaymentInstrument{
		Method: domain.MethodCreditCard,
		CustomFields: map[string]string{
			"channel": "widget",
			"coupon":  "SPRING",
		},
	}

	fields := r.Resolve(context.Background(), &domain.Order{}, instrument)

	assert.Equal(t, "web", fields["channel"])
	assert.Equal(t, "SPRING", fields["coupon"])
}

// TestResolve_MethodScoping tests that statics of other methods do not leak
func TestResolve_MethodScoping(t *testing.T) {
	r := NewResolver(map[domain.PaymentMethod][]string{
		domain.MethodCreditCard: {"card_only:yes"},
		domain.MethodVenmo:      {"venmo_only:yes"},
	}, nil)
	instrument := &domain.PaymentInstrument{Method: domain.MethodVenmo}

	fields := r.Resolve(context.Background(), &domain.Order{}, instrument)

	assert.Equal(t, map[string]string{"venmo_only": "yes"}, fields)
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

// OrderRepository implements ports.OrderRepository and ports.OrderResolver
// over the orders table. Structured parts of the aggregate are stored as
// JSONB; the columns the sync job filters on are first class.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates the repository over an open pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

type orderDoc struct {
	LocaleID        string                      `json:"localeId"`
	CustomerEmail   string                      `json:"customerEmail"`
	Customer        *domain.Customer            `json:"customer,omitempty"`
	BillingAddress  *domain.Address             `json:"billingAddress,omitempty"`
	ShippingAddress *domain.Address             `json:"shippingAddress,omitempty"`
	LineItems       []domain.LineItem           `json:"lineItems,omitempty"`
	TotalTax        string                      `json:"totalTax"`
	TotalGross      string                      `json:"totalGross"`
	ShippingTotal   string                      `json:"shippingTotal"`
	OrderDiscount   string                      `json:"orderDiscount"`
	Instruments     []*domain.PaymentInstrument `json:"instruments,omitempty"`
}

// Save upserts the order aggregate after a processor has mutated it.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	doc := orderDoc{
		LocaleID:        order.LocaleID,
		CustomerEmail:   order.CustomerEmail,
		Customer:        order.Customer,
		BillingAddress:  order.BillingAddress,
		ShippingAddress: order.ShippingAddress,
		LineItems:       order.LineItems,
		TotalTax:        order.TotalTax.String(),
		TotalGross:      order.TotalGrossPrice.String(),
		ShippingTotal:   order.ShippingTotalPrice.String(),
		OrderDiscount:   order.OrderDiscount.String(),
		Instruments:     order.Instruments,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", order.OrderNo, err)
	}

	transactionID := ""
	if pi := order.GatewayInstrument(); pi != nil {
		transactionID = pi.Transaction.ID
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO orders (order_no, currency_code, transaction_id, gateway_order, intent_order, payment_status, body, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (order_no) DO UPDATE SET
			currency_code = EXCLUDED.currency_code,
			transaction_id = EXCLUDED.transaction_id,
			gateway_order = EXCLUDED.gateway_order,
			intent_order = EXCLUDED.intent_order,
			payment_status = EXCLUDED.payment_status,
			body = EXCLUDED.body,
			updated_at = now()`,
		order.OrderNo, order.CurrencyCode, transactionID,
		order.GatewayOrder, order.IntentOrder, string(order.PaymentStatus), body,
	)
	if err != nil {
		return fmt.Errorf("save order %s: %w", order.OrderNo, err)
	}
	return nil
}

// GetOrder loads the order aggregate for authorization.
func (r *OrderRepository) GetOrder(ctx context.Context, orderNo string) (*domain.Order, error) {
	var (
		order = domain.Order{OrderNo: orderNo}
		doc   orderDoc
		body  []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT currency_code, gateway_order, intent_order, payment_status, body
		FROM orders WHERE order_no = $1`, orderNo,
	).Scan(&order.CurrencyCode, &order.GatewayOrder, &order.IntentOrder, &order.PaymentStatus, &body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewGatewayError(domain.ErrorCodeNotFound, "order "+orderNo+" not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderNo, err)
	}

	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderNo, err)
	}
	order.LocaleID = doc.LocaleID
	order.CustomerEmail = doc.CustomerEmail
	order.Customer = doc.Customer
	order.BillingAddress = doc.BillingAddress
	order.ShippingAddress = doc.ShippingAddress
	order.LineItems = doc.LineItems
	order.TotalTax = parseDecimal(doc.TotalTax)
	order.TotalGrossPrice = parseDecimal(doc.TotalGross)
	order.ShippingTotalPrice = parseDecimal(doc.ShippingTotal)
	order.OrderDiscount = parseDecimal(doc.OrderDiscount)
	order.Instruments = doc.Instruments
	return &order, nil
}

// ListOpenGatewayOrders returns gateway orders whose cached payment status is
// not yet terminal, paired with the transaction to poll.
func (r *OrderRepository) ListOpenGatewayOrders(ctx context.Context) ([]ports.OpenOrder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_no, transaction_id
		FROM orders
		WHERE gateway_order
		  AND transaction_id <> ''
		  AND payment_status NOT IN ('settled', 'voided', 'failed')
		ORDER BY order_no`)
	if err != nil {
		return nil, fmt.Errorf("list open gateway orders: %w", err)
	}
	defer rows.Close()

	var open []ports.OpenOrder
	for rows.Next() {
		var o ports.OpenOrder
		if err := rows.Scan(&o.OrderNo, &o.TransactionID); err != nil {
			return nil, fmt.Errorf("scan open order: %w", err)
		}
		open = append(open, o)
	}
	return open, rows.Err()
}

// UpdatePaymentStatuses writes one batch of refreshed statuses in a single
// transaction.
func (r *OrderRepository) UpdatePaymentStatuses(ctx context.Context, statuses map[string]domain.TransactionStatus) error {
	if len(statuses) == 0 {
		return nil
	}
	orderNos := make([]string, 0, len(statuses))
	for orderNo := range statuses {
		orderNos = append(orderNos, orderNo)
	}
	sort.Strings(orderNos)

	return withTransaction(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, orderNo := range orderNos {
			_, err := tx.Exec(ctx, `
				UPDATE orders SET payment_status = $2, updated_at = now()
				WHERE order_no = $1`,
				orderNo, string(statuses[orderNo]))
			if err != nil {
				return fmt.Errorf("update payment status for %s: %w", orderNo, err)
			}
		}
		return nil
	})
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

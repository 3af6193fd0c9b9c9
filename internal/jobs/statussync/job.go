// Package statussync refreshes the cached payment status of open gateway
// orders from the gateway's transaction search.
package statussync

import (
	"context"

	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
	"github.com/storebridge/braintree-checkout/pkg/observability"
)

// batchSize bounds the ids per search call to what the gateway accepts.
const batchSize = 30

// TransactionSearcher is the slice of the gateway client the job needs.
type TransactionSearcher interface {
	SearchTransactionsByIDs(ctx context.Context, ids []string) ([]*domain.TransactionResponse, error)
}

// Job polls open gateway orders and writes back refreshed statuses batch by
// batch. A failed batch is logged and skipped; later batches still run.
type Job struct {
	searcher TransactionSearcher
	orders   ports.OrderRepository
	logger   *zap.Logger
}

// NewJob creates the sync job.
func NewJob(searcher TransactionSearcher, orders ports.OrderRepository, logger *zap.Logger) *Job {
	return &Job{searcher: searcher, orders: orders, logger: logger}
}

// Run executes one full sync pass and returns the number of orders updated.
func (j *Job) Run(ctx context.Context) (int, error) {
	open, err := j.orders.ListOpenGatewayOrders(ctx)
	if err != nil {
		return 0, err
	}
	if len(open) == 0 {
		j.logger.Info("No open gateway orders to sync")
		return 0, nil
	}

	orderByTransaction := make(map[string]string, len(open))
	for _, o := range open {
		orderByTransaction[o.TransactionID] = o.OrderNo
	}

	updated := 0
	for start := 0; start < len(open); start += batchSize {
		end := start + batchSize
		if end > len(open) {
			end = len(open)
		}
		ids := make([]string, 0, end-start)
		for _, o := range open[start:end] {
			ids = append(ids, o.TransactionID)
		}
		updated += j.syncBatch(ctx, ids, orderByTransaction)
	}

	j.logger.Info("Status sync pass complete",
		zap.Int("open_orders", len(open)),
		zap.Int("updated", updated),
	)
	return updated, nil
}

// syncBatch searches one id batch and persists the statuses that came back.
// The gateway may return fewer transactions than asked for; missing ones are
// left untouched until a later pass.
func (j *Job) syncBatch(ctx context.Context, ids []string, orderByTransaction map[string]string) int {
	transactions, err := j.searcher.SearchTransactionsByIDs(ctx, ids)
	if err != nil {
		j.logger.Error("Transaction search failed",
			zap.Int("batch_size", len(ids)),
			zap.Error(err),
		)
		observability.RecordStatusSyncBatch("search_error", 0)
		return 0
	}

	statuses := make(map[string]domain.TransactionStatus, len(transactions))
	for _, tr := range transactions {
		orderNo, ok := orderByTransaction[tr.ID]
		if !ok || tr.Status == "" {
			continue
		}
		statuses[orderNo] = tr.Status
	}
	if len(statuses) == 0 {
		observability.RecordStatusSyncBatch("empty", 0)
		return 0
	}

	if err := j.orders.UpdatePaymentStatuses(ctx, statuses); err != nil {
		j.logger.Error("Status update failed",
			zap.Int("orders", len(statuses)),
			zap.Error(err),
		)
		observability.RecordStatusSyncBatch("update_error", 0)
		return 0
	}
	observability.RecordStatusSyncBatch("success", len(statuses))
	return len(statuses)
}

package statussync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storebridge/braintree-checkout/internal/domain"
	"github.com/storebridge/braintree-checkout/internal/domain/ports"
)

type fakeSearcher struct {
	batches [][]string
	respond func(ids []string) ([]*domain.TransactionResponse, error)
}

func (f *fakeSearcher) SearchTransactionsByIDs(_ context.Context, ids []string) ([]*domain.TransactionResponse, error) {
	f.batches = append(f.batches, ids)
	if f.respond != nil {
		return f.respond(ids)
	}
	out := make([]*domain.TransactionResponse, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.TransactionResponse{ID: id, Status: domain.StatusSettled})
	}
	return out, nil
}

type fakeOrders struct {
	open    []ports.OpenOrder
	listErr error

	updates   []map[string]domain.TransactionStatus
	updateErr func(batch int) error
}

func (f *fakeOrders) ListOpenGatewayOrders(_ context.Context) ([]ports.OpenOrder, error) {
	return f.open, f.listErr
}

func (f *fakeOrders) UpdatePaymentStatuses(_ context.Context, statuses map[string]domain.TransactionStatus) error {
	f.updates = append(f.updates, statuses)
	if f.updateErr != nil {
		return f.updateErr(len(f.updates))
	}
	return nil
}

func openOrders(n int) []ports.OpenOrder {
	out := make([]ports.OpenOrder, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ports.OpenOrder{
			OrderNo:       fmt.Sprintf("0000%04d", i),
			TransactionID: fmt.Sprintf("txn-%04d", i),
		})
	}
	return out
}

// TestRun_NoOpenOrders tests the idle pass
func TestRun_NoOpenOrders(t *testing.T) {
	searcher := &fakeSearcher{}
	job := NewJob(searcher, &fakeOrders{}, zap.NewNop())

	updated, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Empty(t, searcher.batches)
}

// TestRun_BatchesOfThirty tests that 75 open orders produce exactly three
// search calls of 30, 30, and 15 ids
func TestRun_BatchesOfThirty(t *testing.T) {
	searcher := &fakeSearcher{}
	orders := &fakeOrders{open: openOrders(75)}
	job := NewJob(searcher, orders, zap.NewNop())

	updated, err := job.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, searcher.batches, 3)
	assert.Len(t, searcher.batches[0], 30)
	assert.Len(t, searcher.batches[1], 30)
	assert.Len(t, searcher.batches[2], 15)
	assert.Equal(t, 75, updated)
	assert.Len(t, orders.updates, 3)
}

// TestRun_PartialSearchResult tests that transactions missing from the
// response are simply skipped
func TestRun_PartialSearchResult(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(ids []string) ([]*domain.TransactionResponse, error) {
			// Only the first id of each batch comes back
			return []*domain.TransactionResponse{{ID: ids[0], Status: domain.StatusVoided}}, nil
		},
	}
	orders := &fakeOrders{open: openOrders(45)}
	job := NewJob(searcher, orders, zap.NewNop())

	updated, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, updated)
	require.Len(t, orders.updates, 2)
	assert.Equal(t, domain.StatusVoided, orders.updates[0]["00000000"])
	assert.Equal(t, domain.StatusVoided, orders.updates[1]["00000030"])
}

// TestRun_SearchErrorSkipsBatchOnly tests that a failed search batch does not
// stop later batches
func TestRun_SearchErrorSkipsBatchOnly(t *testing.T) {
	calls := 0
	searcher := &fakeSearcher{
		respond: func(ids []string) ([]*domain.TransactionResponse, error) {
			calls++
			if calls == 2 {
				return nil, errors.New("gateway timeout")
			}
			out := make([]*domain.TransactionResponse, 0, len(ids))
			for _, id := range ids {
				out = append(out, &domain.TransactionResponse{ID: id, Status: domain.StatusSettled})
			}
			return out, nil
		},
	}
	orders := &fakeOrders{open: openOrders(75)}
	job := NewJob(searcher, orders, zap.NewNop())

	updated, err := job.Run(context.Background())

	require.NoError(t, err)
	require.Len(t, searcher.batches, 3)
	assert.Equal(t, 45, updated)
	assert.Len(t, orders.updates, 2)
}

// TestRun_UpdateErrorSkipsBatchOnly tests repository failure isolation
func TestRun_UpdateErrorSkipsBatchOnly(t *testing.T) {
	orders := &fakeOrders{
		open: openOrders(60),
		updateErr: func(batch int) error {
			if batch == 1 {
				return errors.New("deadlock detected")
			}
			return nil
		},
	}
	job := NewJob(&fakeSearcher{}, orders, zap.NewNop())

	updated, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 30, updated)
}

// TestRun_UnknownTransactionIgnored tests that search hits for transactions
// no longer tracked do not panic or update anything
func TestRun_UnknownTransactionIgnored(t *testing.T) {
	searcher := &fakeSearcher{
		respond: func(ids []string) ([]*domain.TransactionResponse, error) {
			return []*domain.TransactionResponse{{ID: "txn-unknown", Status: domain.StatusSettled}}, nil
		},
	}
	orders := &fakeOrders{open: openOrders(5)}
	job := NewJob(searcher, orders, zap.NewNop())

	updated, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, updated)
	assert.Empty(t, orders.updates)
}

// TestRun_ListFailure tests that an unreadable order store fails the pass
func TestRun_ListFailure(t *testing.T) {
	orders := &fakeOrders{listErr: errors.New("connection refused")}
	job := NewJob(&fakeSearcher{}, orders, zap.NewNop())

	_, err := job.Run(context.Background())

	require.Error(t, err)
}

package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// ProjectionStore is the in-memory counterpart of the SQLite projection
// store: the order_sync rows and the vendor_balance ledger rows.
type ProjectionStore struct {
	mu       sync.Mutex
	syncRows map[string]order.Status
	balances map[balanceKey]order.Status
}

type balanceKey struct {
	trnID   string
	trnType string
}

func NewProjectionStore() *ProjectionStore {
	return &ProjectionStore{
		syncRows: make(map[string]order.Status),
		balances: make(map[balanceKey]order.Status),
	}
}

func (p *ProjectionStore) UpsertStatus(ctx context.Context, orderID string, status order.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.syncRows[orderID] = order.Normalize(status)
	return nil
}

func (p *ProjectionStore) UpdateStatus(ctx context.Context, trnID, trnType string, status order.Status) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balances[balanceKey{trnID, trnType}] = order.Normalize(status)
	return nil
}

// Status returns the projected status for an order, or order.ErrNotFound.
func (p *ProjectionStore) Status(ctx context.Context, orderID string) (order.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.syncRows[orderID]
	if !ok {
		return "", order.ErrNotFound
	}
	return st, nil
}

// BalanceStatus returns the ledger status for (trnID, trnType), or
// order.ErrNotFound.
func (p *ProjectionStore) BalanceStatus(ctx context.Context, trnID, trnType string) (order.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.balances[balanceKey{trnID, trnType}]
	if !ok {
		return "", order.ErrNotFound
	}
	return st, nil
}

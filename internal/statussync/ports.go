package statussync

import (
	"context"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// SyncStore is the port to the order_sync projection: one denormalized status
// row per order id, kept for fast vendor-dashboard lookups.
type SyncStore interface {
	UpsertStatus(ctx context.Context, orderID string, status order.Status) error
}

// BalanceStore is the port to the vendor_balance ledger. Order rows are keyed
// by (trn_id = order id, trn_type = "order").
type BalanceStore interface {
	UpdateStatus(ctx context.Context, trnID, trnType string, status order.Status) error
}

// Splitter re-runs the split workflow for a root order. The synchronizer
// calls it when an unsplit root is edited through the admin path, so it
// depends on this narrow contract instead of the split package.
type Splitter interface {
	Split(ctx context.Context, parentID string) error
}

// SplitterFunc adapts a function to the Splitter interface.
type SplitterFunc func(ctx context.Context, parentID string) error

func (f SplitterFunc) Split(ctx context.Context, parentID string) error { return f(ctx, parentID) }

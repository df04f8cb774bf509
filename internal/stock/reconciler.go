// Package stock repairs a double stock-decrement: when a root order is split,
// the host reduces stock once for the root and once more for the sub-orders'
// copies of the same lines. The reconciler reverses the duplicate decrement
// exactly once, using each line's reduced-stock marker.
package stock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// Channel identifies the front-door path the stock-reduction event came
// through. REST requests do not exhibit the double decrement, so they are
// exempt. An explicit caller flag instead of an ambient environment check.
type Channel string

const (
	ChannelStorefront Channel = "storefront"
	ChannelREST       Channel = "rest"
)

// Reconciler runs the repair pass on the host's stock-reduction event.
type Reconciler struct {
	orders  order.Store
	catalog order.Catalog
}

func NewReconciler(orders order.Store, catalog order.Catalog) *Reconciler {
	return &Reconciler{orders: orders, catalog: catalog}
}

// RestoreReducedStock reverses the duplicate decrement for every product line
// of a split root that still carries a reduced-stock marker, then clears the
// markers. Idempotent: a second pass finds no markers and does nothing.
//
// A failed stock increase for one item is recorded as an order note and does
// not abort the pass for the remaining items.
func (r *Reconciler) RestoreReducedStock(ctx context.Context, orderID string, channel Channel) error {
	if channel == ChannelREST {
		return nil
	}

	o, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", orderID, err)
	}

	// Only split roots are affected by the defect; plain orders and
	// sub-orders reduce stock exactly once.
	if !o.IsRoot() || !o.Meta.HasSubOrder {
		return nil
	}

	changed := false
	for i := range o.Items {
		item := &o.Items[i]
		if item.Kind != order.KindProduct {
			continue
		}
		if item.ReducedStock == nil || *item.ReducedStock == 0 {
			continue
		}

		product, err := r.catalog.Product(ctx, item.ProductID)
		if err != nil || !product.ManagesStock {
			continue
		}

		if _, err := r.catalog.AdjustStock(ctx, product.ID, *item.ReducedStock); err != nil {
			o.AddNote(fmt.Sprintf("Unable to restore stock for item %s.", product.Name))
			changed = true
			slog.WarnContext(ctx, "stock restore failed",
				"order_id", o.ID, "product_id", product.ID, "error", err)
			continue
		}

		item.ReducedStock = nil
		changed = true
	}

	if !changed {
		return nil
	}

	o.UpdatedAt = time.Now().UTC()
	if err := r.orders.Save(ctx, o); err != nil {
		return fmt.Errorf("save order %s after stock restore: %w", orderID, err)
	}
	return nil
}

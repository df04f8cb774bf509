package split

import (
	"context"
	"errors"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// Allocation maps a vendor id to that vendor's subset of a root order's line
// items. Item order within a vendor follows the original order; iteration
// order across vendors is unspecified and must not be relied upon.
//
// An Allocation is derived fresh from the order's current items on every
// split and never persisted.
type Allocation map[string][]order.LineItem

// Allocate groups the given line items by owning vendor. Lines whose VendorID
// is unset are resolved through the catalog; fee and shipping lines stay with
// the root and are skipped here.
//
// A product line whose vendor cannot be resolved yields a DataIntegrityError:
// that is an upstream product/vendor linkage bug, so the error propagates and
// the split attempt is abandoned.
func Allocate(ctx context.Context, catalog order.Catalog, items []order.LineItem) (Allocation, error) {
	alloc := make(Allocation)
	for _, li := range items {
		if li.Kind != order.KindProduct {
			continue
		}
		vendorID := li.VendorID
		if vendorID == "" {
			v, err := catalog.VendorOf(ctx, li.ProductID)
			if err != nil || v == "" {
				if err == nil {
					err = errors.New("catalog returned empty vendor id")
				}
				return nil, &order.DataIntegrityError{ProductID: li.ProductID, ItemID: li.ID, Err: err}
			}
			vendorID = v
		}
		li.VendorID = vendorID
		alloc[vendorID] = append(alloc[vendorID], li)
	}
	return alloc, nil
}

// Package coupon enforces the vendor binding of discount coupons: a coupon
// only applies when the cart holds a product from the coupon's own vendor,
// so the discount can always be attributed to a sub-order after splitting.
package coupon

import (
	"context"
	"errors"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// FlagEnsureVendorCoupon disables the guard entirely when switched off.
const FlagEnsureVendorCoupon = "ensure_vendor_coupon"

// Coupon is the slice of the host's coupon entity this guard cares about.
type Coupon struct {
	ID string
	// VendorID is the coupon's owning vendor, derived from its author.
	VendorID string
	// ProductIDs is the bound-product restriction. Empty is a configuration
	// error: an unrestricted coupon cannot be distributed across sub-orders.
	ProductIDs []string
}

// CartItem is one line of the cart under validation.
type CartItem struct {
	ProductID string
}

// FeatureFlags supplies externally controlled toggles.
type FeatureFlags interface {
	Enabled(ctx context.Context, name string) bool
}

// Guard is the coupon validation gate. It is a narrowing filter: it can
// downgrade the host's verdict to invalid or raise a hard error, never
// upgrade an invalid coupon to valid.
type Guard struct {
	catalog order.Catalog
	flags   FeatureFlags
}

func NewGuard(catalog order.Catalog, flags FeatureFlags) *Guard {
	return &Guard{catalog: catalog, flags: flags}
}

// Validate applies the vendor-binding rules on top of the host's own verdict.
//
// A false result with a nil error is a soft rejection: the coupon simply does
// not apply to this cart. A ConfigurationError means the coupon itself is
// misconfigured and the failure must surface to the caller.
func (g *Guard) Validate(ctx context.Context, hostValid bool, c Coupon, cart []CartItem) (bool, error) {
	if g.flags != nil && !g.flags.Enabled(ctx, FlagEnsureVendorCoupon) {
		return hostValid, nil
	}

	if len(c.ProductIDs) == 0 {
		return false, &order.ConfigurationError{Reason: "a coupon must be restricted with a vendor product"}
	}

	for _, item := range cart {
		vendorID, err := g.catalog.VendorOf(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				// An unresolvable cart item cannot match the coupon's
				// vendor; leave it to the host's own validation.
				continue
			}
			return false, err
		}
		if vendorID == c.VendorID {
			return hostValid, nil
		}
	}

	return false, nil
}

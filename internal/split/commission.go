package split

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// CommissionRule is the platform's cut for one vendor: a percentage of the
// vendor's item subtotal plus a flat fee per order.
type CommissionRule struct {
	Percent decimal.Decimal
	Flat    decimal.Decimal
}

// CommissionRules supplies the applicable rule per vendor. Rules live outside
// this core (admin settings, per-vendor overrides).
type CommissionRules interface {
	RuleFor(ctx context.Context, vendorID string) (CommissionRule, error)
}

// Commission computes the platform's share of a vendor's line-item subset.
// Pure and deterministic. The result is rounded half-up to the currency's
// two minor units, matching the host's monetary rounding.
func Commission(items []order.LineItem, rule CommissionRule) decimal.Decimal {
	subtotal := decimal.Zero
	for _, li := range items {
		subtotal = subtotal.Add(li.Subtotal())
	}
	fee := subtotal.Mul(rule.Percent).Div(decimal.NewFromInt(100)).Add(rule.Flat)
	// decimal.Round rounds half away from zero, which is half-up for the
	// non-negative amounts handled here.
	return fee.Round(2)
}

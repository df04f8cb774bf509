package split

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// Factory materializes the per-vendor outcome of a split: either a new child
// order, or an in-place annotation of the root when there is only one vendor.
type Factory struct {
	rules CommissionRules
}

func NewFactory(rules CommissionRules) *Factory {
	return &Factory{rules: rules}
}

// AnnotateParent takes the single-vendor fast path: no child is created, the
// root itself carries the commission and vendor linkage. Creating a tree of
// depth one for a single vendor would buy nothing.
func (f *Factory) AnnotateParent(ctx context.Context, st order.Store, parent *order.Order, vendorID string, items []order.LineItem) error {
	rule, err := f.rules.RuleFor(ctx, vendorID)
	if err != nil {
		return fmt.Errorf("commission rule for vendor %s: %w", vendorID, err)
	}
	fee := Commission(items, rule)

	parent.Meta.AdminFee = &fee
	parent.Meta.VendorID = vendorID
	parent.UpdatedAt = time.Now().UTC()
	if err := st.Save(ctx, parent); err != nil {
		return fmt.Errorf("save single-vendor parent %s: %w", parent.ID, err)
	}
	return nil
}

// CreateSubOrder creates one child order for a vendor's item subset. The
// child copies the parent's current status and records the computed
// commission as its admin fee.
func (f *Factory) CreateSubOrder(ctx context.Context, st order.Store, parent *order.Order, vendorID string, items []order.LineItem) (*order.Order, error) {
	rule, err := f.rules.RuleFor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("commission rule for vendor %s: %w", vendorID, err)
	}
	fee := Commission(items, rule)

	now := time.Now().UTC()
	child := &order.Order{
		ID:       uuid.NewString(),
		ParentID: parent.ID,
		Status:   order.Normalize(parent.Status),
		Items:    append([]order.LineItem(nil), items...),
		Meta: order.Meta{
			AdminFee: &fee,
			VendorID: vendorID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := st.Create(ctx, child); err != nil {
		return nil, fmt.Errorf("create sub order for parent %s vendor %s: %w", parent.ID, vendorID, err)
	}

	slog.InfoContext(ctx, "sub order created",
		"parent_id", parent.ID,
		"sub_order_id", child.ID,
		"vendor_id", vendorID,
		"items", len(items),
	)
	return child, nil
}

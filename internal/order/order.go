package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineKind classifies a line on an order. Only product lines participate in
// vendor allocation and stock repair; fee and shipping lines belong to the
// host's own totals machinery.
type LineKind string

const (
	KindProduct  LineKind = "product"
	KindFee      LineKind = "fee"
	KindShipping LineKind = "shipping"
)

// LineItem is one purchased line within an order.
type LineItem struct {
	ID        string
	ProductID string
	// VendorID is the owning vendor, resolved through the Catalog. It is
	// filled in during allocation; an empty value before that is normal.
	VendorID  string
	Kind      LineKind
	Quantity  int
	UnitPrice decimal.Decimal
	// ReducedStock records how much stock has already been decremented for
	// this line. nil means no stock-reduction event has touched it. The
	// reconciler clears it after reversing a duplicate decrement.
	ReducedStock *int
}

// Subtotal is quantity times unit price, unrounded.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Meta carries the split-related flags and linkage the host stores as order
// metadata.
type Meta struct {
	// HasSubOrder is true iff this root currently owns two or more live
	// child orders.
	HasSubOrder bool
	// AdminFee is the platform's commission for this order's vendor share.
	// Set on each child order, or on the root itself on the single-vendor
	// fast path. nil when no commission has been computed.
	AdminFee *decimal.Decimal
	// VendorID is set on child orders and on single-vendor roots.
	VendorID string
}

// Order is a root or child purchase record. Children always point at a root
// via ParentID and never have children of their own.
type Order struct {
	ID       string
	ParentID string
	Status   Status
	Items    []LineItem
	Meta     Meta
	// Notes are human-readable annotations attached by the core (completion
	// note, failed stock restore), appended in order.
	Notes     []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRoot reports whether the order is a customer checkout record rather than
// a vendor sub-order.
func (o *Order) IsRoot() bool {
	return o.ParentID == ""
}

// AddNote appends a human-readable annotation.
func (o *Order) AddNote(note string) {
	o.Notes = append(o.Notes, note)
}

// Clone returns a deep copy. Stores hand out clones so callers can mutate
// freely and persist through Save.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]LineItem, len(o.Items))
	for i, li := range o.Items {
		cp.Items[i] = li
		if li.ReducedStock != nil {
			v := *li.ReducedStock
			cp.Items[i].ReducedStock = &v
		}
	}
	cp.Notes = append([]string(nil), o.Notes...)
	if o.Meta.AdminFee != nil {
		fee := *o.Meta.AdminFee
		cp.Meta.AdminFee = &fee
	}
	return &cp
}

// Total sums the subtotals of all lines, unrounded.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range o.Items {
		total = total.Add(li.Subtotal())
	}
	return total
}

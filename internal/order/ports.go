package order

import "context"

// Store is the port to the host's order persistence. The core depends on
// this abstraction, not on a concrete database, so it stays testable with an
// in-memory fake.
type Store interface {
	// Get returns the order with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Order, error)
	// Create persists a new order.
	Create(ctx context.Context, o *Order) error
	// Save persists changes to an existing order.
	Save(ctx context.Context, o *Order) error
	// Children returns all live child orders of the given parent, in no
	// particular order. An empty slice, not an error, when there are none.
	Children(ctx context.Context, parentID string) ([]*Order, error)
	// Delete removes an order permanently. Hard delete: a deleted child must
	// not reappear in Children.
	Delete(ctx context.Context, id string) error
	// Transact runs fn against a store view whose writes become visible
	// atomically when fn returns nil, and are discarded when fn returns an
	// error. The split uses it so a partial multi-vendor creation leaves no
	// trace.
	Transact(ctx context.Context, fn func(Store) error) error
}

// Product is the subset of the catalog's product record the core needs.
type Product struct {
	ID           string
	Name         string
	VendorID     string
	ManagesStock bool
	Stock        int
}

// Catalog is the port to the host's product subsystem.
type Catalog interface {
	// VendorOf resolves a product to its owning vendor id, or ErrNotFound.
	VendorOf(ctx context.Context, productID string) (string, error)
	// Product returns the product record, or ErrNotFound.
	Product(ctx context.Context, productID string) (*Product, error)
	// AdjustStock applies a signed delta to the product's stock level and
	// returns the new level.
	AdjustStock(ctx context.Context, productID string, delta int) (int, error)
}

package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jcmexdev/marketplace-orders/internal/order"
)

// Catalog is an in-memory product catalog.
type Catalog struct {
	mu       sync.Mutex
	products map[string]*order.Product
	// failAdjust lists product ids whose stock adjustment should fail,
	// for exercising the reconciler's continue-on-error path.
	failAdjust map[string]bool
}

func NewCatalog() *Catalog {
	return &Catalog{
		products:   make(map[string]*order.Product),
		failAdjust: make(map[string]bool),
	}
}

// AddProduct registers or replaces a product.
func (c *Catalog) AddProduct(p order.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := p
	c.products[p.ID] = &cp
}

// FailAdjustStock makes AdjustStock fail for the given product.
func (c *Catalog) FailAdjustStock(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAdjust[productID] = true
}

func (c *Catalog) VendorOf(ctx context.Context, productID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[productID]
	if !ok {
		return "", order.ErrNotFound
	}
	return p.VendorID, nil
}

func (c *Catalog) Product(ctx context.Context, productID string) (*order.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.products[productID]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *Catalog) AdjustStock(ctx context.Context, productID string, delta int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failAdjust[productID] {
		return 0, errors.New("stock adjustment refused")
	}

	p, ok := c.products[productID]
	if !ok {
		return 0, order.ErrNotFound
	}
	p.Stock += delta
	return p.Stock, nil
}

package split_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jcmexdev/marketplace-orders/internal/order"
	"github.com/jcmexdev/marketplace-orders/internal/split"
	"github.com/jcmexdev/marketplace-orders/internal/storage/memory"
)

func newTestCatalog() *memory.Catalog {
	catalog := memory.NewCatalog()
	catalog.AddProduct(order.Product{ID: "prod_a", Name: "Product A", VendorID: "vendor_1", ManagesStock: true, Stock: 10})
	catalog.AddProduct(order.Product{ID: "prod_b", Name: "Product B", VendorID: "vendor_2", ManagesStock: true, Stock: 10})
	catalog.AddProduct(order.Product{ID: "prod_c", Name: "Product C", VendorID: "vendor_1", ManagesStock: true, Stock: 10})
	return catalog
}

func item(id, productID string, qty int, price int64) order.LineItem {
	return order.LineItem{
		ID:        id,
		ProductID: productID,
		Kind:      order.KindProduct,
		Quantity:  qty,
		UnitPrice: decimal.NewFromInt(price),
	}
}

func TestAllocate_GroupsByVendorPreservingItemOrder(t *testing.T) {
	items := []order.LineItem{
		item("li-1", "prod_a", 2, 10),
		item("li-2", "prod_b", 1, 30),
		item("li-3", "prod_c", 3, 5),
	}

	alloc, err := split.Allocate(context.Background(), newTestCatalog(), items)

	assert.NoError(t, err)
	assert.Len(t, alloc, 2)
	if assert.Len(t, alloc["vendor_1"], 2) {
		assert.Equal(t, "li-1", alloc["vendor_1"][0].ID)
		assert.Equal(t, "li-3", alloc["vendor_1"][1].ID)
		assert.Equal(t, "vendor_1", alloc["vendor_1"][0].VendorID)
	}
	assert.Len(t, alloc["vendor_2"], 1)
}

func TestAllocate_SkipsNonProductLines(t *testing.T) {
	items := []order.LineItem{
		item("li-1", "prod_a", 1, 10),
		{ID: "li-2", Kind: order.KindShipping, Quantity: 1, UnitPrice: decimal.NewFromInt(7)},
		{ID: "li-3", Kind: order.KindFee, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
	}

	alloc, err := split.Allocate(context.Background(), newTestCatalog(), items)

	assert.NoError(t, err)
	assert.Len(t, alloc, 1)
	assert.Len(t, alloc["vendor_1"], 1)
}

func TestAllocate_UnresolvableVendorIsDataIntegrityError(t *testing.T) {
	items := []order.LineItem{item("li-1", "prod_unknown", 1, 10)}

	alloc, err := split.Allocate(context.Background(), newTestCatalog(), items)

	assert.Nil(t, alloc)
	var integrityErr *order.DataIntegrityError
	if assert.ErrorAs(t, err, &integrityErr) {
		assert.Equal(t, "prod_unknown", integrityErr.ProductID)
		assert.Equal(t, "li-1", integrityErr.ItemID)
	}
}

func TestAllocate_KeepsPreResolvedVendor(t *testing.T) {
	li := item("li-1", "prod_unknown", 1, 10)
	li.VendorID = "vendor_9"

	alloc, err := split.Allocate(context.Background(), newTestCatalog(), []order.LineItem{li})

	assert.NoError(t, err)
	assert.Len(t, alloc["vendor_9"], 1)
}

package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/marketplace-orders/internal/order"
	"github.com/jcmexdev/marketplace-orders/internal/stock"
	"github.com/jcmexdev/marketplace-orders/internal/storage/memory"
)

type stockEnv struct {
	orders     *memory.OrderStore
	catalog    *memory.Catalog
	reconciler *stock.Reconciler
}

func newStockEnv() *stockEnv {
	catalog := memory.NewCatalog()
	catalog.AddProduct(order.Product{ID: "prod_a", Name: "Product A", VendorID: "vendor_1", ManagesStock: true, Stock: 10})
	catalog.AddProduct(order.Product{ID: "prod_b", Name: "Product B", VendorID: "vendor_2", ManagesStock: true, Stock: 10})
	catalog.AddProduct(order.Product{ID: "prod_u", Name: "Untracked", VendorID: "vendor_1", ManagesStock: false})

	orders := memory.NewOrderStore()
	return &stockEnv{
		orders:     orders,
		catalog:    catalog,
		reconciler: stock.NewReconciler(orders, catalog),
	}
}

func reducedItem(id, productID string, qty, reduced int) order.LineItem {
	return order.LineItem{
		ID:           id,
		ProductID:    productID,
		Kind:         order.KindProduct,
		Quantity:     qty,
		UnitPrice:    decimal.NewFromInt(10),
		ReducedStock: &reduced,
	}
}

func (e *stockEnv) seedSplitRoot(t *testing.T, items ...order.LineItem) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, e.orders.Create(context.Background(), &order.Order{
		ID:        "root-1",
		Status:    order.Normalize(order.StatusProcessing),
		Items:     items,
		Meta:      order.Meta{HasSubOrder: true},
		CreatedAt: now,
		UpdatedAt: now,
	}))
}

func (e *stockEnv) stockOf(t *testing.T, productID string) int {
	t.Helper()
	p, err := e.catalog.Product(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func TestRestoreReducedStock_ReversesDuplicateDecrement(t *testing.T) {
	env := newStockEnv()
	env.seedSplitRoot(t,
		reducedItem("li-1", "prod_a", 2, 2),
		reducedItem("li-2", "prod_b", 1, 1),
	)
	ctx := context.Background()

	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "root-1", stock.ChannelStorefront))

	assert.Equal(t, 12, env.stockOf(t, "prod_a"))
	assert.Equal(t, 11, env.stockOf(t, "prod_b"))

	o, err := env.orders.Get(ctx, "root-1")
	require.NoError(t, err)
	assert.Nil(t, o.Items[0].ReducedStock)
	assert.Nil(t, o.Items[1].ReducedStock)
}

func TestRestoreReducedStock_SecondRunIsNoOp(t *testing.T) {
	env := newStockEnv()
	env.seedSplitRoot(t, reducedItem("li-1", "prod_a", 2, 2))
	ctx := context.Background()

	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "root-1", stock.ChannelStorefront))
	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "root-1", stock.ChannelStorefront))

	assert.Equal(t, 12, env.stockOf(t, "prod_a"), "stock must not be increased twice")
}

func TestRestoreReducedStock_RESTChannelIsExempt(t *testing.T) {
	env := newStockEnv()
	env.seedSplitRoot(t, reducedItem("li-1", "prod_a", 2, 2))

	require.NoError(t, env.reconciler.RestoreReducedStock(context.Background(), "root-1", stock.ChannelREST))

	assert.Equal(t, 10, env.stockOf(t, "prod_a"))
}

func TestRestoreReducedStock_OnlySplitRootsAreProcessed(t *testing.T) {
	env := newStockEnv()
	ctx := context.Background()
	now := time.Now().UTC()

	// An unsplit root and a child order both reduce stock exactly once.
	require.NoError(t, env.orders.Create(ctx, &order.Order{
		ID: "plain", Status: order.Normalize(order.StatusProcessing),
		Items: []order.LineItem{reducedItem("li-1", "prod_a", 1, 1)}, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, env.orders.Create(ctx, &order.Order{
		ID: "sub", ParentID: "plain", Status: order.Normalize(order.StatusProcessing),
		Items: []order.LineItem{reducedItem("li-2", "prod_b", 1, 1)}, CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "plain", stock.ChannelStorefront))
	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "sub", stock.ChannelStorefront))

	assert.Equal(t, 10, env.stockOf(t, "prod_a"))
	assert.Equal(t, 10, env.stockOf(t, "prod_b"))
}

func TestRestoreReducedStock_SkipsUnmarkedUntrackedAndNonProductLines(t *testing.T) {
	env := newStockEnv()
	untracked := reducedItem("li-2", "prod_u", 1, 1)
	fee := order.LineItem{ID: "li-3", Kind: order.KindFee, Quantity: 1, UnitPrice: decimal.NewFromInt(3)}
	unmarked := order.LineItem{ID: "li-4", ProductID: "prod_b", Kind: order.KindProduct, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}
	env.seedSplitRoot(t, reducedItem("li-1", "prod_a", 1, 1), untracked, fee, unmarked)
	ctx := context.Background()

	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "root-1", stock.ChannelStorefront))

	assert.Equal(t, 11, env.stockOf(t, "prod_a"))
	assert.Equal(t, 10, env.stockOf(t, "prod_b"))

	o, err := env.orders.Get(ctx, "root-1")
	require.NoError(t, err)
	// The untracked product keeps its marker; only restored lines are cleared.
	assert.NotNil(t, o.Items[1].ReducedStock)
	assert.Empty(t, o.Notes)
}

func TestRestoreReducedStock_FailureIsNotedAndPassContinues(t *testing.T) {
	env := newStockEnv()
	env.seedSplitRoot(t,
		reducedItem("li-1", "prod_a", 2, 2),
		reducedItem("li-2", "prod_b", 1, 1),
	)
	env.catalog.FailAdjustStock("prod_a")
	ctx := context.Background()

	require.NoError(t, env.reconciler.RestoreReducedStock(ctx, "root-1", stock.ChannelStorefront))

	// prod_b was still restored after prod_a failed.
	assert.Equal(t, 11, env.stockOf(t, "prod_b"))

	o, err := env.orders.Get(ctx, "root-1")
	require.NoError(t, err)
	require.Len(t, o.Notes, 1)
	assert.Equal(t, "Unable to restore stock for item Product A.", o.Notes[0])
	// The failed line keeps its marker so a later pass can retry it.
	assert.NotNil(t, o.Items[0].ReducedStock)
	assert.Nil(t, o.Items[1].ReducedStock)
}

func TestRestoreReducedStock_UnknownOrder(t *testing.T) {
	env := newStockEnv()

	err := env.reconciler.RestoreReducedStock(context.Background(), "missing", stock.ChannelStorefront)

	assert.ErrorIs(t, err, order.ErrNotFound)
}

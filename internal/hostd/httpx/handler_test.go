package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/marketplace-orders/internal/coupon"
	"github.com/jcmexdev/marketplace-orders/internal/hostd/httpx"
	"github.com/jcmexdev/marketplace-orders/internal/order"
	"github.com/jcmexdev/marketplace-orders/internal/split"
	"github.com/jcmexdev/marketplace-orders/internal/statussync"
	"github.com/jcmexdev/marketplace-orders/internal/stock"
	"github.com/jcmexdev/marketplace-orders/internal/storage/memory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	orders := memory.NewOrderStore()
	catalog := memory.NewCatalog()
	catalog.AddProduct(order.Product{ID: "prod_a", Name: "Product A", VendorID: "vendor_1", ManagesStock: true, Stock: 10})
	catalog.AddProduct(order.Product{ID: "prod_b", Name: "Product B", VendorID: "vendor_2", ManagesStock: true, Stock: 10})

	rules := memory.NewRules(split.CommissionRule{Percent: decimal.NewFromInt(10)})
	events := memory.NewEventRecorder()
	projections := memory.NewProjectionStore()
	flags := memory.NewFlags()

	factory := split.NewFactory(rules)
	orchestrator := split.NewOrchestrator(orders, catalog, factory, events, projections, nil)
	synchronizer := statussync.NewSynchronizer(orders, projections, projections,
		statussync.SplitterFunc(func(ctx context.Context, parentID string) error {
			return orchestrator.Split(ctx, parentID, split.Options{})
		}))

	handler := httpx.NewHandler(orders, orchestrator, synchronizer,
		coupon.NewGuard(catalog, flags), stock.NewReconciler(orders, catalog))

	srv := httptest.NewServer(httpx.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeOrder(t *testing.T, resp *http.Response) httpx.OrderResponse {
	t.Helper()
	defer resp.Body.Close()
	var out httpx.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCheckout_SplitsMultiVendorOrder(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/checkout/orders", httpx.CheckoutRequest{
		OrderID: "100",
		Items: []httpx.CheckoutItemDTO{
			{ProductID: "prod_a", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: "prod_b", Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
		},
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decodeOrder(t, resp)
	assert.True(t, got.HasSubOrder)
	assert.Len(t, got.SubOrders, 2)
	for _, sub := range got.SubOrders {
		assert.Equal(t, "100", sub.ParentID)
		assert.NotNil(t, sub.AdminFee)
	}
}

func TestOrderPlacedWebhook_Redelivery(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/checkout/orders", httpx.CheckoutRequest{
		OrderID: "100",
		Items: []httpx.CheckoutItemDTO{
			{ProductID: "prod_a", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: "prod_b", Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/webhooks/order-placed", httpx.OrderPlacedWebhook{OrderID: "100"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeOrder(t, resp)
	assert.Len(t, got.SubOrders, 2, "redelivered webhook must not duplicate sub orders")
}

func TestStatusUpdate_CompletesParentThroughChildren(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/checkout/orders", httpx.CheckoutRequest{
		OrderID: "100",
		Items: []httpx.CheckoutItemDTO{
			{ProductID: "prod_a", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
			{ProductID: "prod_b", Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeOrder(t, resp)
	require.Len(t, created.SubOrders, 2)

	for _, sub := range created.SubOrders {
		resp := postJSON(t, srv.URL+"/orders/"+sub.ID+"/status", httpx.StatusUpdateRequest{Status: "completed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/orders/100")
	require.NoError(t, err)
	got := decodeOrder(t, resp)
	assert.Equal(t, "wc-completed", got.Status)
	assert.NotEmpty(t, got.Notes)
}

func TestValidateCoupon_Endpoint(t *testing.T) {
	srv := newServer(t)

	resp := postJSON(t, srv.URL+"/coupons/validate", httpx.CouponValidationRequest{
		Valid: true,
		Coupon: httpx.CouponDTO{
			ID: "c-1", VendorID: "vendor_1", ProductIDs: []string{"prod_a"},
		},
		Cart: []httpx.CartItemDTO{{ProductID: "prod_b"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	var out httpx.CouponValidationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.False(t, out.Valid)

	// Unbound coupon is a hard validation failure.
	resp = postJSON(t, srv.URL+"/coupons/validate", httpx.CouponValidationRequest{
		Valid:  true,
		Coupon: httpx.CouponDTO{ID: "c-2", VendorID: "vendor_1"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestGetOrder_NotFound(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/orders/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/marketplace-orders/internal/hostd/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTraceSpan)
	r.Use(middlewares.AttachChannel)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/checkout/orders", handler.Checkout)
	r.Post("/webhooks/order-placed", handler.OrderPlaced)
	r.Post("/webhooks/stock-reduced", handler.StockReduced)
	r.Post("/orders/{id}/status", handler.UpdateStatus)
	r.Post("/coupons/validate", handler.ValidateCoupon)
	r.Get("/orders/{id}", handler.GetOrder)
	return r
}

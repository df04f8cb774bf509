// Package httpx is the demo host's front door: it translates the host's
// webhook-style events (checkout completed, status changed, stock reduced,
// coupon validation) into invocations of the core.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jcmexdev/marketplace-orders/internal/coupon"
	"github.com/jcmexdev/marketplace-orders/internal/hostd/httpx/middlewares"
	"github.com/jcmexdev/marketplace-orders/internal/order"
	"github.com/jcmexdev/marketplace-orders/internal/split"
	"github.com/jcmexdev/marketplace-orders/internal/statussync"
	"github.com/jcmexdev/marketplace-orders/internal/stock"
)

// Handler wires the host events to the core components.
type Handler struct {
	orders       order.Store
	orchestrator *split.Orchestrator
	synchronizer *statussync.Synchronizer
	guard        *coupon.Guard
	reconciler   *stock.Reconciler
}

func NewHandler(
	orders order.Store,
	orchestrator *split.Orchestrator,
	synchronizer *statussync.Synchronizer,
	guard *coupon.Guard,
	reconciler *stock.Reconciler,
) *Handler {
	return &Handler{
		orders:       orders,
		orchestrator: orchestrator,
		synchronizer: synchronizer,
		guard:        guard,
		reconciler:   reconciler,
	}
}

// Checkout persists a new root order and runs the split, the same flow the
// host triggers on checkout completion.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "items are required")
		return
	}

	now := time.Now().UTC()
	o := &order.Order{
		ID:        req.OrderID,
		Status:    order.Normalize(order.StatusPending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "product_id and quantity must be valid")
			return
		}
		kind := order.LineKind(it.Kind)
		if kind == "" {
			kind = order.KindProduct
		}
		o.Items = append(o.Items, order.LineItem{
			ID:        uuid.NewString(),
			ProductID: it.ProductID,
			Kind:      kind,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	if err := h.orders.Create(r.Context(), o); err != nil {
		writeError(w, http.StatusInternalServerError, "create_failed", err.Error())
		return
	}

	if err := h.runSplit(w, r, o.ID); err != nil {
		return
	}
	h.respondWithOrder(w, r, o.ID, http.StatusCreated)
}

// OrderPlaced is the redeliverable "order persisted" webhook; the split is
// idempotent so duplicates are harmless.
func (h *Handler) OrderPlaced(w http.ResponseWriter, r *http.Request) {
	var req OrderPlacedWebhook
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	if err := h.runSplit(w, r, req.OrderID); err != nil {
		return
	}
	h.respondWithOrder(w, r, req.OrderID, http.StatusOK)
}

// UpdateStatus routes every status mutation through the synchronizer.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status_required", "")
		return
	}

	src := statussync.SourceHost
	if req.Source == "admin" {
		src = statussync.SourceAdmin
	}

	if err := h.synchronizer.UpdateStatus(r.Context(), orderID, order.Status(req.Status), req.Note, src); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", orderID)
			return
		}
		writeError(w, http.StatusInternalServerError, "status_update_failed", err.Error())
		return
	}
	h.respondWithOrder(w, r, orderID, http.StatusOK)
}

// StockReduced is the host's stock-decrement event; the reconciler reverses
// the duplicate decrement for split roots.
func (h *Handler) StockReduced(w http.ResponseWriter, r *http.Request) {
	var req StockReducedWebhook
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	channel := stock.ChannelStorefront
	if middlewares.ChannelFromContext(r.Context()) == "rest" {
		channel = stock.ChannelREST
	}

	if err := h.reconciler.RestoreReducedStock(r.Context(), req.OrderID, channel); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", req.OrderID)
			return
		}
		writeError(w, http.StatusInternalServerError, "stock_restore_failed", err.Error())
		return
	}
	h.respondWithOrder(w, r, req.OrderID, http.StatusOK)
}

// ValidateCoupon runs the vendor-coupon gate over the host's own verdict.
func (h *Handler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cart := make([]coupon.CartItem, len(req.Cart))
	for i, it := range req.Cart {
		cart[i] = coupon.CartItem{ProductID: it.ProductID}
	}

	valid, err := h.guard.Validate(r.Context(), req.Valid, coupon.Coupon{
		ID:         req.Coupon.ID,
		VendorID:   req.Coupon.VendorID,
		ProductIDs: req.Coupon.ProductIDs,
	}, cart)
	if err != nil {
		var cfgErr *order.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeError(w, http.StatusUnprocessableEntity, "coupon_misconfigured", cfgErr.Reason)
			return
		}
		writeError(w, http.StatusInternalServerError, "coupon_validation_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CouponValidationResponse{Valid: valid})
}

// GetOrder returns an order with its sub-orders.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	h.respondWithOrder(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *Handler) runSplit(w http.ResponseWriter, r *http.Request, orderID string) error {
	opts := split.Options{
		SyncParent: middlewares.ChannelFromContext(r.Context()) == "rest",
	}
	err := h.orchestrator.Split(r.Context(), orderID, opts)
	if err == nil {
		return nil
	}

	var integrityErr *order.DataIntegrityError
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", orderID)
	case errors.As(err, &integrityErr):
		writeError(w, http.StatusConflict, "data_integrity", integrityErr.Error())
	default:
		slog.ErrorContext(r.Context(), "split failed", "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "split_failed", err.Error())
	}
	return err
}

func (h *Handler) respondWithOrder(w http.ResponseWriter, r *http.Request, orderID string, status int) {
	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusNotFound, "order_not_found", orderID)
		return
	}
	children, err := h.orders.Children(r.Context(), orderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "children_lookup_failed", err.Error())
		return
	}

	resp := mapOrder(o)
	for _, child := range children {
		resp.SubOrders = append(resp.SubOrders, mapOrder(child))
	}
	writeJSON(w, status, resp)
}

func mapOrder(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		ParentID:    o.ParentID,
		Status:      string(o.Status),
		HasSubOrder: o.Meta.HasSubOrder,
		VendorID:    o.Meta.VendorID,
		AdminFee:    o.Meta.AdminFee,
		Notes:       o.Notes,
	}
	for _, li := range o.Items {
		resp.Items = append(resp.Items, OrderItemDTO{
			ProductID:    li.ProductID,
			VendorID:     li.VendorID,
			Kind:         string(li.Kind),
			Quantity:     li.Quantity,
			UnitPrice:    li.UnitPrice,
			ReducedStock: li.ReducedStock,
		})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

package httpx

import "github.com/shopspring/decimal"

type CheckoutRequest struct {
	OrderID string            `json:"order_id,omitempty"`
	Items   []CheckoutItemDTO `json:"items"`
}

type CheckoutItemDTO struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Kind      string          `json:"kind,omitempty"`
}

type OrderPlacedWebhook struct {
	OrderID string `json:"order_id"`
}

type StockReducedWebhook struct {
	OrderID string `json:"order_id"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
	// Source is "admin" for dashboard edits; anything else counts as the
	// host's own pipeline.
	Source string `json:"source,omitempty"`
}

type CouponValidationRequest struct {
	Valid  bool          `json:"valid"`
	Coupon CouponDTO     `json:"coupon"`
	Cart   []CartItemDTO `json:"cart"`
}

type CouponDTO struct {
	ID         string   `json:"id"`
	VendorID   string   `json:"vendor_id"`
	ProductIDs []string `json:"product_ids"`
}

type CartItemDTO struct {
	ProductID string `json:"product_id"`
}

type CouponValidationResponse struct {
	Valid bool `json:"valid"`
}

type OrderResponse struct {
	ID          string           `json:"id"`
	ParentID    string           `json:"parent_id,omitempty"`
	Status      string           `json:"status"`
	HasSubOrder bool             `json:"has_sub_order"`
	VendorID    string           `json:"vendor_id,omitempty"`
	AdminFee    *decimal.Decimal `json:"admin_fee,omitempty"`
	Items       []OrderItemDTO   `json:"items"`
	Notes       []string         `json:"notes,omitempty"`
	SubOrders   []OrderResponse  `json:"sub_orders,omitempty"`
}

type OrderItemDTO struct {
	ProductID    string          `json:"product_id"`
	VendorID     string          `json:"vendor_id,omitempty"`
	Kind         string          `json:"kind"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ReducedStock *int            `json:"reduced_stock,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

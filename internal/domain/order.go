package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// Cancellable reports whether a user may still cancel an order in this
// state. Once fulfilment starts the order can only be changed by admin.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// PaymentStatus tracks payment independently of the order lifecycle.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Shipping policy: orders at or above the threshold ship free,
// everything else pays the flat rate.
const (
	FreeShippingThreshold = 5000.0
	FlatShippingCost      = 250.0
)

// ShippingCost returns the shipping charge for an order subtotal.
func ShippingCost(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingCost
}

// Order is an immutable record of a placed order. Customer and address
// fields are snapshots taken at creation time so later profile edits
// never alter a past order.
type Order struct {
	ID             uuid.UUID     `json:"id"`
	OrderNumber    string        `json:"order_number"`
	UserID         uuid.UUID     `json:"user_id"`
	Subtotal       float64       `json:"subtotal"`
	ShippingCost   float64       `json:"shipping_cost"`
	TaxAmount      float64       `json:"tax_amount"`
	DiscountAmount float64       `json:"discount_amount"`
	TotalAmount    float64       `json:"total_amount"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`

	ShippingAddress json.RawMessage `json:"shipping_address"`
	BillingAddress  json.RawMessage `json:"billing_address,omitempty"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`

	PaymentMethod *string `json:"payment_method,omitempty"`
	PaymentID     *string `json:"payment_id,omitempty"`

	TrackingNumber        *string    `json:"tracking_number,omitempty"`
	CourierService        *string    `json:"courier_service,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	DeliveredAt           *time.Time `json:"delivered_at,omitempty"`

	CustomerNotes *string `json:"customer_notes,omitempty"`
	AdminNotes    *string `json:"admin_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `json:"items"`
}

// OrderItem is the line-item snapshot taken when the order was placed.
// ProductID may be nil if the product was later deleted; the snapshot
// fields remain the source of truth for display.
type OrderItem struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	ProductID       *uuid.UUID `json:"product_id,omitempty"`
	ProductName     string     `json:"product_name"`
	ProductSKU      *string    `json:"product_sku,omitempty"`
	Quantity        int        `json:"quantity"`
	PriceAtPurchase float64    `json:"price_at_purchase"`
	Subtotal        float64    `json:"subtotal"`
	CreatedAt       time.Time  `json:"created_at"`
}

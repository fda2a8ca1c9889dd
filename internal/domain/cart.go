package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one pending line in a user's cart. At most one row exists
// per (user, product); repeated adds merge into the existing quantity.
type CartItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Product is the joined-in snapshot of the referenced product.
	Product *Product `json:"product,omitempty"`
}

// Subtotal is quantity times the current product price. Returns 0 when
// the product snapshot is not loaded.
func (ci *CartItem) Subtotal() float64 {
	if ci.Product == nil {
		return 0
	}
	return ci.Product.Price * float64(ci.Quantity)
}

// Cart is the aggregate view returned to clients: all of a user's
// items plus derived totals. An empty cart is valid.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"total_items"`
	Subtotal   float64    `json:"subtotal"`
}

// NewCart derives the aggregate totals from a slice of items.
func NewCart(items []CartItem) Cart {
	cart := Cart{Items: items}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	for i := range items {
		cart.TotalItems += items[i].Quantity
		cart.Subtotal += items[i].Subtotal()
	}
	return cart
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCart(t *testing.T) {
	cart := NewCart([]CartItem{
		{Quantity: 2, Product: &Product{Price: 1200}},
		{Quantity: 1, Product: &Product{Price: 350.5}},
	})

	assert.Equal(t, 3, cart.TotalItems)
	assert.Equal(t, 2750.5, cart.Subtotal)
}

func TestNewCart_Empty(t *testing.T) {
	cart := NewCart(nil)

	assert.Zero(t, cart.TotalItems)
	assert.Zero(t, cart.Subtotal)
	assert.NotNil(t, cart.Items, "items should serialize as [] not null")
}

func TestCartItem_Subtotal_MissingProduct(t *testing.T) {
	item := CartItem{Quantity: 3}
	assert.Zero(t, item.Subtotal())
}

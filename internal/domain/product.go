package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product. Price is a positive amount with
// two decimal places; OriginalPrice, when set, is the pre-discount
// price shown alongside it. The free-text Category/Subcategory labels
// predate the Category entity and are independent of CategoryID.
type Product struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	ShortDescription *string         `json:"short_description,omitempty"`
	Price            float64         `json:"price"`
	OriginalPrice    *float64        `json:"original_price,omitempty"`
	CategoryID       *uuid.UUID      `json:"category_id,omitempty"`
	Category         string          `json:"category"`
	Subcategory      *string         `json:"subcategory,omitempty"`
	StockQuantity    int             `json:"stock_quantity"`
	SKU              *string         `json:"sku,omitempty"`
	Slug             *string         `json:"slug,omitempty"`
	Images           json.RawMessage `json:"images,omitempty"`
	Thumbnail        *string         `json:"thumbnail,omitempty"`
	Specifications   json.RawMessage `json:"specifications,omitempty"`
	Features         json.RawMessage `json:"features,omitempty"`
	IsActive         bool            `json:"is_active"`
	IsFeatured       bool            `json:"is_featured"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsInStock reports whether the product has any available inventory.
func (p *Product) IsInStock() bool {
	return p.StockQuantity > 0
}

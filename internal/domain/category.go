package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a product category. Categories form a forest via
// the nullable ParentID reference; slug and name are globally unique.
type Category struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Description  *string    `json:"description,omitempty"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Icon         *string    `json:"icon,omitempty"`
	Image        *string    `json:"image,omitempty"`
	Color        *string    `json:"color,omitempty"`
	DisplayOrder int        `json:"display_order"`
	IsActive     bool       `json:"is_active"`
	IsFeatured   bool       `json:"is_featured"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// ProductCount is populated by store queries, not a column.
	ProductCount int `json:"product_count"`
}

// CategoryTreeNode is one node of the hierarchical category view
// assembled from flat rows by the tree builder.
type CategoryTreeNode struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Slug          string             `json:"slug"`
	Icon          *string            `json:"icon,omitempty"`
	Image         *string            `json:"image,omitempty"`
	Color         *string            `json:"color,omitempty"`
	ProductCount  int                `json:"product_count"`
	Subcategories []CategoryTreeNode `json:"subcategories"`
}

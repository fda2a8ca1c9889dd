package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer review of a product. Rating is constrained to
// [1,5]; at most one review exists per (user, product) pair.
type Review struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	ProductID          uuid.UUID `json:"product_id"`
	Rating             int       `json:"rating"`
	Title              *string   `json:"title,omitempty"`
	Comment            *string   `json:"comment,omitempty"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	IsApproved         bool      `json:"is_approved"`
	IsFeatured         bool      `json:"is_featured"`
	HelpfulCount       int       `json:"helpful_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User holds the locally owned profile for an identity managed by the
// external auth provider. The ID is the provider's subject claim;
// credential facts (password, email verification flow) live with the
// provider, everything else here is ours.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   *string   `json:"full_name,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	IsActive   bool      `json:"is_active"`
	IsVerified bool      `json:"is_verified"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

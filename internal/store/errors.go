package store

import "errors"

// Predefined errors for store operations. Handlers translate these to
// HTTP status codes; anything else is treated as an internal failure.
var (
	ErrUserNotFound        = errors.New("store: user not found")
	ErrUserEmailExists     = errors.New("store: user email already exists")
	ErrCategoryNotFound    = errors.New("store: category not found")
	ErrCategoryInUse       = errors.New("store: category has products or subcategories")
	ErrSlugExists          = errors.New("store: slug already in use")
	ErrNameExists          = errors.New("store: name already in use")
	ErrParentNotFound      = errors.New("store: parent category not found")
	ErrSelfParent          = errors.New("store: category cannot be its own parent")
	ErrProductNotFound     = errors.New("store: product not found")
	ErrProductInactive     = errors.New("store: product is not available")
	ErrProductSKUExists    = errors.New("store: product SKU already exists")
	ErrInsufficientStock   = errors.New("store: insufficient stock")
	ErrCartItemNotFound    = errors.New("store: cart item not found")
	ErrCartEmpty           = errors.New("store: cart is empty")
	ErrOrderNotFound       = errors.New("store: order not found")
	ErrOrderNotCancellable = errors.New("store: order cannot be cancelled at this stage")
	ErrReviewNotFound      = errors.New("store: review not found")
	ErrReviewExists        = errors.New("store: product already reviewed by this user")
)

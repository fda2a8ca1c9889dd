package store

import (
	"context"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

// ListUsersParams holds filters for the admin user listing.
type ListUsersParams struct {
	Limit       int
	Offset      int
	IsActive    *bool
	IsAdmin     *bool
	SearchQuery *string // matches email or full_name
}

// UserStorer defines the database operations for user profiles.
type UserStorer interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) error
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*domain.User, error)
	ListUsers(ctx context.Context, params ListUsersParams) ([]domain.User, int, error)
}

// ListCategoriesParams holds filters for the category listing.
type ListCategoriesParams struct {
	Limit       int
	Offset      int
	ParentID    *uuid.UUID
	IsActive    *bool
	IsFeatured  *bool
	SearchQuery *string
}

// CategoryOrder is one (id, display_order) pair for bulk reordering.
type CategoryOrder struct {
	ID           uuid.UUID `json:"id"`
	DisplayOrder int       `json:"display_order"`
}

// CategoryStorer defines the database operations for categories.
type CategoryStorer interface {
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error)
	ListMainCategories(ctx context.Context) ([]domain.Category, error)
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	IsSlugAvailable(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	// DeleteCategory removes a category. Without force it fails with
	// ErrCategoryInUse when products or subcategories reference it;
	// with force those references are cleared in the same transaction.
	DeleteCategory(ctx context.Context, id uuid.UUID, force bool) error
	// ReorderCategories applies display orders in bulk and returns how
	// many rows actually changed; unknown ids are skipped.
	ReorderCategories(ctx context.Context, orders []CategoryOrder) (int, error)
}

// ListProductsParams holds parameters for listing products.
type ListProductsParams struct {
	Limit       int
	Offset      int
	SearchQuery *string // name/description substring
	Category    *string // legacy free-text label
	Subcategory *string
	CategoryID  *uuid.UUID
	MinPrice    *float64
	MaxPrice    *float64
	IsActive    *bool
	IsFeatured  *bool
	InStockOnly bool
	SortBy      string // created_at | price | name, falls back to created_at
	SortOrder   string // anything but "asc" sorts descending
}

// ProductStorer defines the database operations for products.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error)
	ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CartStorer defines the cart aggregate operations. Stock checks here
// are advisory reads against live product rows; the authoritative gate
// is the conditional decrement inside order creation.
type CartStorer interface {
	GetCartItems(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID, userID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveCartItem(ctx context.Context, itemID, userID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// CreateOrderInput carries the customer-supplied order details; the
// line items always come from the caller's cart.
type CreateOrderInput struct {
	ShippingAddress []byte
	BillingAddress  []byte
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	PaymentMethod   *string
	CustomerNotes   *string
}

// ListOrdersParams holds filters for order listings. UserID nil means
// all orders (admin view).
type ListOrdersParams struct {
	Limit  int
	Offset int
	UserID *uuid.UUID
	Status *domain.OrderStatus
}

// OrderStorer defines the order workflow operations.
type OrderStorer interface {
	// CreateOrderFromCart converts the user's cart into an order in a
	// single transaction: snapshot line items, decrement stock, clear
	// the cart. A failed stock decrement rolls everything back.
	CreateOrderFromCart(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
	GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.Order, int, error)
	// CancelOrder cancels a pending/confirmed order owned by the user
	// and restores stock for every line whose product still exists.
	CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
}

// ListReviewsParams holds filters for review listings.
type ListReviewsParams struct {
	Limit  int
	Offset int
	Rating *int
}

// ReviewStorer defines the database operations for reviews.
type ReviewStorer interface {
	CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
	// ListProductReviews returns approved reviews plus the average
	// rating over all approved reviews of the product.
	ListProductReviews(ctx context.Context, productID uuid.UUID, params ListReviewsParams) ([]domain.Review, int, float64, error)
	ListUserReviews(ctx context.Context, userID uuid.UUID, params ListReviewsParams) ([]domain.Review, int, error)
	UpdateReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
	DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error
	// HasPurchased reports whether the user has an order line for the
	// product, used to mark verified-purchase reviews.
	HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

// StatsStorer provides the admin dashboard aggregates.
type StatsStorer interface {
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

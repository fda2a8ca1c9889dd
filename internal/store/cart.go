package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

const cartItemColumns = "ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at"

func scanCartItemWithProduct(row interface{ Scan(...interface{}) error }, ci *domain.CartItem) error {
	ci.Product = &domain.Product{}
	p := ci.Product
	return row.Scan(
		&ci.ID, &ci.UserID, &ci.ProductID, &ci.Quantity, &ci.CreatedAt, &ci.UpdatedAt,
		&p.ID, &p.Name, &p.Description, &p.ShortDescription,
		&p.Price, &p.OriginalPrice,
		&p.CategoryID, &p.Category, &p.Subcategory,
		&p.StockQuantity, &p.SKU, &p.Slug,
		&p.Images, &p.Thumbnail, &p.Specifications, &p.Features,
		&p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

// GetCartItems returns the user's cart lines with the current product
// row joined in, newest first. An empty slice means an empty cart.
func (s *PostgresStore) GetCartItems(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `,
			p.id, p.name, p.description, p.short_description, p.price, p.original_price,
			p.category_id, p.category, p.subcategory, p.stock_quantity, p.sku, p.slug,
			p.images, p.thumbnail, p.specifications, p.features,
			p.is_active, p.is_featured, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC;
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("store: GetCartItems failed to query cart: %w", err)
	}
	defer rows.Close()

	items := []domain.CartItem{}
	for rows.Next() {
		var ci domain.CartItem
		if err := scanCartItemWithProduct(rows, &ci); err != nil {
			return nil, fmt.Errorf("store: GetCartItems failed to scan cart row: %w", err)
		}
		items = append(items, ci)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: GetCartItems iteration error: %w", err)
	}
	return items, nil
}

// AddCartItem adds quantity of a product to the user's cart, merging
// into the existing row when one exists. The merged quantity must not
// exceed available stock.
func (s *PostgresStore) AddCartItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	var itemID uuid.UUID
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var stock int
		var active bool
		err := tx.QueryRowContext(ctx,
			`SELECT stock_quantity, is_active FROM products WHERE id = $1`, productID,
		).Scan(&stock, &active)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("store: AddCartItem failed to load product: %w", err)
		}
		if !active {
			return ErrProductInactive
		}

		var existingID uuid.UUID
		var existingQty int
		err = tx.QueryRowContext(ctx,
			`SELECT id, quantity FROM cart_items WHERE user_id = $1 AND product_id = $2`,
			userID, productID,
		).Scan(&existingID, &existingQty)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if quantity > stock {
				return ErrInsufficientStock
			}
			itemID = uuid.New()
			_, err = tx.ExecContext(ctx,
				`INSERT INTO cart_items (id, user_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
				itemID, userID, productID, quantity)
			if err != nil {
				return fmt.Errorf("store: AddCartItem failed to insert cart row: %w", err)
			}
		case err != nil:
			return fmt.Errorf("store: AddCartItem failed to load cart row: %w", err)
		default:
			if existingQty+quantity > stock {
				return ErrInsufficientStock
			}
			itemID = existingID
			_, err = tx.ExecContext(ctx,
				`UPDATE cart_items SET quantity = quantity + $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
				quantity, existingID)
			if err != nil {
				return fmt.Errorf("store: AddCartItem failed to update cart row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getCartItem(ctx, itemID, userID)
}

// UpdateCartItem sets the line's quantity to an absolute value.
func (s *PostgresStore) UpdateCartItem(ctx context.Context, itemID, userID uuid.UUID, quantity int) (*domain.CartItem, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var productID uuid.UUID
		err := tx.QueryRowContext(ctx,
			`SELECT product_id FROM cart_items WHERE id = $1 AND user_id = $2`,
			itemID, userID,
		).Scan(&productID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return fmt.Errorf("store: UpdateCartItem failed to load cart row: %w", err)
		}

		var stock int
		if err := tx.QueryRowContext(ctx,
			`SELECT stock_quantity FROM products WHERE id = $1`, productID,
		).Scan(&stock); err != nil {
			return fmt.Errorf("store: UpdateCartItem failed to load product: %w", err)
		}
		if quantity > stock {
			return ErrInsufficientStock
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE cart_items SET quantity = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			quantity, itemID)
		if err != nil {
			return fmt.Errorf("store: UpdateCartItem failed to update cart row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getCartItem(ctx, itemID, userID)
}

func (s *PostgresStore) RemoveCartItem(ctx context.Context, itemID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("store: RemoveCartItem failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: RemoveCartItem failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// ClearCart removes every line from the user's cart. Clearing an
// already empty cart succeeds.
func (s *PostgresStore) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("store: ClearCart failed to execute delete: %w", err)
	}
	return nil
}

func (s *PostgresStore) getCartItem(ctx context.Context, itemID, userID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT ` + cartItemColumns + `,
			p.id, p.name, p.description, p.short_description, p.price, p.original_price,
			p.category_id, p.category, p.subcategory, p.stock_quantity, p.sku, p.slug,
			p.images, p.thumbnail, p.specifications, p.features,
			p.is_active, p.is_featured, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1 AND ci.user_id = $2;
	`
	var ci domain.CartItem
	if err := scanCartItemWithProduct(s.db.QueryRowContext(ctx, query, itemID, userID), &ci); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("store: getCartItem failed to scan row: %w", err)
	}
	return &ci, nil
}

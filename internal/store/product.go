package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

const productColumns = `id, name, description, short_description, price, original_price,
		category_id, category, subcategory, stock_quantity, sku, slug,
		images, thumbnail, specifications, features,
		is_active, is_featured, created_at, updated_at`

// sortableProductColumns maps client sort keys onto real columns so the
// ORDER BY clause is never built from raw input.
var sortableProductColumns = map[string]string{
	"created_at": "created_at",
	"price":      "price",
	"name":       "name",
}

func scanProduct(row interface{ Scan(...interface{}) error }, p *domain.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.ShortDescription,
		&p.Price, &p.OriginalPrice,
		&p.CategoryID, &p.Category, &p.Subcategory,
		&p.StockQuantity, &p.SKU, &p.Slug,
		&p.Images, &p.Thumbnail, &p.Specifications, &p.Features,
		&p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.CategoryID != nil {
		exists, err := s.categoryExists(ctx, *product.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCategoryNotFound
		}
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	query := `
		INSERT INTO products (id, name, description, short_description, price, original_price,
			category_id, category, subcategory, stock_quantity, sku, slug,
			images, thumbnail, specifications, features, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + productColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		product.ID, product.Name, product.Description, product.ShortDescription,
		product.Price, product.OriginalPrice,
		product.CategoryID, product.Category, product.Subcategory,
		product.StockQuantity, product.SKU, product.Slug,
		product.Images, product.Thumbnail, product.Specifications, product.Features,
		product.IsActive, product.IsFeatured,
	)

	var created domain.Product
	if err := scanProduct(row, &created); err != nil {
		if isUniqueViolation(err, "sku") {
			return nil, ErrProductSKUExists
		}
		if isUniqueViolation(err, "slug") {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1;`
	var product domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, id), &product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &product, nil
}

func (s *PostgresStore) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1;`
	var product domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, slug), &product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductBySlug failed to scan row: %w", err)
	}
	return &product, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, int, error) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if params.SearchQuery != nil && *params.SearchQuery != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argID, argID+1))
		searchTerm := "%" + *params.SearchQuery + "%"
		queryArgs = append(queryArgs, searchTerm, searchTerm)
		argID += 2
	}
	if params.Category != nil && *params.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argID))
		queryArgs = append(queryArgs, *params.Category)
		argID++
	}
	if params.Subcategory != nil && *params.Subcategory != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("subcategory = $%d", argID))
		queryArgs = append(queryArgs, *params.Subcategory)
		argID++
	}
	if params.CategoryID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category_id = $%d", argID))
		queryArgs = append(queryArgs, *params.CategoryID)
		argID++
	}
	if params.MinPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argID))
		queryArgs = append(queryArgs, *params.MinPrice)
		argID++
	}
	if params.MaxPrice != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argID))
		queryArgs = append(queryArgs, *params.MaxPrice)
		argID++
	}
	if params.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argID))
		queryArgs = append(queryArgs, *params.IsActive)
		argID++
	}
	if params.IsFeatured != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_featured = $%d", argID))
		queryArgs = append(queryArgs, *params.IsFeatured)
		argID++
	}
	if params.InStockOnly {
		whereClauses = append(whereClauses, "stock_quantity > 0")
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM products" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to count products: %w", err)
	}
	if totalCount == 0 {
		return []domain.Product{}, 0, nil
	}

	sortColumn, ok := sortableProductColumns[params.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	sortDirection := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		sortDirection = "ASC"
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		productColumns, whereCondition, sortColumn, sortDirection, argID, argID+1)
	finalArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, params.Limit)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, totalCount, nil
}

func (s *PostgresStore) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_featured = TRUE AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT $1;`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: ListFeaturedProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("store: ListFeaturedProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListFeaturedProducts iteration error: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.CategoryID != nil {
		exists, err := s.categoryExists(ctx, *product.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrCategoryNotFound
		}
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, short_description = $3, price = $4, original_price = $5,
			category_id = $6, category = $7, subcategory = $8, stock_quantity = $9, sku = $10, slug = $11,
			images = $12, thumbnail = $13, specifications = $14, features = $15,
			is_active = $16, is_featured = $17, updated_at = CURRENT_TIMESTAMP
		WHERE id = $18
		RETURNING ` + productColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.ShortDescription,
		product.Price, product.OriginalPrice,
		product.CategoryID, product.Category, product.Subcategory,
		product.StockQuantity, product.SKU, product.Slug,
		product.Images, product.Thumbnail, product.Specifications, product.Features,
		product.IsActive, product.IsFeatured,
		product.ID,
	)

	var updated domain.Product
	if err := scanProduct(row, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if isUniqueViolation(err, "sku") {
			return nil, ErrProductSKUExists
		}
		if isUniqueViolation(err, "slug") {
			return nil, ErrSlugExists
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return &updated, nil
}

// DeleteProduct removes the product row. Order items keep their
// snapshot fields and only lose the product reference (SET NULL FK);
// cart rows referencing the product cascade away.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

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

const categoryColumns = `c.id, c.name, c.slug, c.description, c.parent_id, c.icon, c.image, c.color,
		c.display_order, c.is_active, c.is_featured, c.created_at, c.updated_at,
		(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id) AS product_count`

func scanCategory(row interface{ Scan(...interface{}) error }, c *domain.Category) error {
	return row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID,
		&c.Icon, &c.Image, &c.Color,
		&c.DisplayOrder, &c.IsActive, &c.IsFeatured,
		&c.CreatedAt, &c.UpdatedAt,
		&c.ProductCount,
	)
}

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ParentID != nil {
		exists, err := s.categoryExists(ctx, *category.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrParentNotFound
		}
	}

	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	query := `
		INSERT INTO categories AS c (id, name, slug, description, parent_id, icon, image, color, display_order, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + categoryColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		category.ID, category.Name, category.Slug, category.Description, category.ParentID,
		category.Icon, category.Image, category.Color,
		category.DisplayOrder, category.IsActive, category.IsFeatured,
	)

	var created domain.Category
	if err := scanCategory(row, &created); err != nil {
		if isUniqueViolation(err, "slug") {
			return nil, ErrSlugExists
		}
		if isUniqueViolation(err, "name") {
			return nil, ErrNameExists
		}
		return nil, fmt.Errorf("store: CreateCategory failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) categoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: categoryExists failed: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) GetCategoryByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.id = $1;`
	var category domain.Category
	if err := scanCategory(s.db.QueryRowContext(ctx, query, id), &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByID failed to scan row: %w", err)
	}
	return &category, nil
}

func (s *PostgresStore) GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories c WHERE c.slug = $1;`
	var category domain.Category
	if err := scanCategory(s.db.QueryRowContext(ctx, query, slug), &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryBySlug failed to scan row: %w", err)
	}
	return &category, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context, params ListCategoriesParams) ([]domain.Category, int, error) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if params.ParentID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.parent_id = $%d", argID))
		queryArgs = append(queryArgs, *params.ParentID)
		argID++
	}
	if params.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.is_active = $%d", argID))
		queryArgs = append(queryArgs, *params.IsActive)
		argID++
	}
	if params.IsFeatured != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("c.is_featured = $%d", argID))
		queryArgs = append(queryArgs, *params.IsFeatured)
		argID++
	}
	if params.SearchQuery != nil && *params.SearchQuery != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(c.name ILIKE $%d OR c.description ILIKE $%d)", argID, argID+1))
		searchTerm := "%" + *params.SearchQuery + "%"
		queryArgs = append(queryArgs, searchTerm, searchTerm)
		argID += 2
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM categories c" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to count categories: %w", err)
	}
	if totalCount == 0 {
		return []domain.Category{}, 0, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM categories c%s ORDER BY c.display_order ASC, c.name ASC LIMIT $%d OFFSET $%d",
		categoryColumns, whereCondition, argID, argID+1)
	finalArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0, params.Limit)
	for rows.Next() {
		var c domain.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, 0, fmt.Errorf("store: ListCategories failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}
	return categories, totalCount, nil
}

// ListMainCategories returns the active root categories.
func (s *PostgresStore) ListMainCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories c
		WHERE c.parent_id IS NULL AND c.is_active = TRUE
		ORDER BY c.display_order ASC, c.name ASC;`
	return s.queryCategories(ctx, query, "ListMainCategories")
}

// ListActiveCategories returns every active category, ordered the way
// the tree builder expects (display_order, then name).
func (s *PostgresStore) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories c
		WHERE c.is_active = TRUE
		ORDER BY c.display_order ASC, c.name ASC;`
	return s.queryCategories(ctx, query, "ListActiveCategories")
}

func (s *PostgresStore) queryCategories(ctx context.Context, query, op string) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: %s failed to query categories: %w", op, err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := scanCategory(rows, &c); err != nil {
			return nil, fmt.Errorf("store: %s failed to scan category row: %w", op, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %s iteration error: %w", op, err)
	}
	return categories, nil
}

// IsSlugAvailable reports whether no category other than excludeID
// uses the slug.
func (s *PostgresStore) IsSlugAvailable(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	var err error
	if excludeID != nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`,
			slug, *excludeID).Scan(&exists)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	}
	if err != nil {
		return false, fmt.Errorf("store: IsSlugAvailable failed: %w", err)
	}
	return !exists, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category.ParentID != nil {
		if *category.ParentID == category.ID {
			return nil, ErrSelfParent
		}
		exists, err := s.categoryExists(ctx, *category.ParentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrParentNotFound
		}
	}

	query := `
		UPDATE categories AS c
		SET name = $1, slug = $2, description = $3, parent_id = $4, icon = $5, image = $6, color = $7,
			display_order = $8, is_active = $9, is_featured = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $11
		RETURNING ` + categoryColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		category.Name, category.Slug, category.Description, category.ParentID,
		category.Icon, category.Image, category.Color,
		category.DisplayOrder, category.IsActive, category.IsFeatured,
		category.ID,
	)

	var updated domain.Category
	if err := scanCategory(row, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if isUniqueViolation(err, "slug") {
			return nil, ErrSlugExists
		}
		if isUniqueViolation(err, "name") {
			return nil, ErrNameExists
		}
		return nil, fmt.Errorf("store: UpdateCategory failed to scan row: %w", err)
	}
	return &updated, nil
}

// DeleteCategory removes a category. Without force the delete is
// blocked while products or subcategories still reference it. With
// force, products are detached (category reference cleared) and child
// categories are promoted to root before the row is removed, all in
// one transaction so the raw FK cascade never fires.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id uuid.UUID, force bool) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var productCount, childCount int
		err := tx.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM products WHERE category_id = $1),
				(SELECT COUNT(*) FROM categories WHERE parent_id = $1)
		`, id).Scan(&productCount, &childCount)
		if err != nil {
			return fmt.Errorf("store: DeleteCategory failed to count references: %w", err)
		}

		if !force && (productCount > 0 || childCount > 0) {
			return ErrCategoryInUse
		}

		if force {
			if _, err := tx.ExecContext(ctx, `UPDATE products SET category_id = NULL WHERE category_id = $1`, id); err != nil {
				return fmt.Errorf("store: DeleteCategory failed to detach products: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `UPDATE categories SET parent_id = NULL WHERE parent_id = $1`, id); err != nil {
				return fmt.Errorf("store: DeleteCategory failed to promote subcategories: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("store: DeleteCategory failed to execute delete: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("store: DeleteCategory failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// ReorderCategories bulk-applies display orders. Unknown ids are
// skipped; the returned count is how many rows actually changed.
func (s *PostgresStore) ReorderCategories(ctx context.Context, orders []CategoryOrder) (int, error) {
	updated := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, item := range orders {
			result, err := tx.ExecContext(ctx,
				`UPDATE categories SET display_order = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
				item.DisplayOrder, item.ID)
			if err != nil {
				return fmt.Errorf("store: ReorderCategories failed to update %s: %w", item.ID, err)
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("store: ReorderCategories failed to get rows affected: %w", err)
			}
			updated += int(rowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

const reviewColumns = `id, user_id, product_id, rating, title, comment,
		is_verified_purchase, is_approved, is_featured, helpful_count, created_at, updated_at`

func scanReview(row interface{ Scan(...interface{}) error }, r *domain.Review) error {
	return row.Scan(
		&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Title, &r.Comment,
		&r.IsVerifiedPurchase, &r.IsApproved, &r.IsFeatured, &r.HelpfulCount,
		&r.CreatedAt, &r.UpdatedAt,
	)
}

func (s *PostgresStore) CreateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	query := `
		INSERT INTO reviews (id, user_id, product_id, rating, title, comment, is_verified_purchase, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reviewColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		review.ID, review.UserID, review.ProductID, review.Rating,
		review.Title, review.Comment, review.IsVerifiedPurchase, review.IsApproved,
	)

	var created domain.Review
	if err := scanReview(row, &created); err != nil {
		if isUniqueViolation(err, "user_id") || isUniqueViolation(err, "product_id") {
			return nil, ErrReviewExists
		}
		return nil, fmt.Errorf("store: CreateReview failed to scan row: %w", err)
	}
	return &created, nil
}

// HasPurchased reports whether the user has an order line for the
// product. Cancelled orders do not count.
func (s *PostgresStore) HasPurchased(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status <> $3
		)
	`, userID, productID, domain.OrderCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("store: HasPurchased failed: %w", err)
	}
	return exists, nil
}

// ListProductReviews returns the product's approved reviews plus the
// average rating over all approved reviews, regardless of pagination.
func (s *PostgresStore) ListProductReviews(ctx context.Context, productID uuid.UUID, params ListReviewsParams) ([]domain.Review, int, float64, error) {
	queryArgs := []interface{}{productID}
	whereCondition := "WHERE product_id = $1 AND is_approved = TRUE"
	argID := 2

	if params.Rating != nil {
		whereCondition += fmt.Sprintf(" AND rating = $%d", argID)
		queryArgs = append(queryArgs, *params.Rating)
		argID++
	}

	countQuery := "SELECT COUNT(*) FROM reviews " + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, 0, fmt.Errorf("store: ListProductReviews failed to count reviews: %w", err)
	}

	var avgRating float64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = $1 AND is_approved = TRUE`,
		productID,
	).Scan(&avgRating); err != nil {
		return nil, 0, 0, fmt.Errorf("store: ListProductReviews failed to average ratings: %w", err)
	}

	if totalCount == 0 {
		return []domain.Review{}, 0, avgRating, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM reviews %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		reviewColumns, whereCondition, argID, argID+1)
	finalArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalArgs...)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("store: ListProductReviews failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0, params.Limit)
	for rows.Next() {
		var r domain.Review
		if err := scanReview(rows, &r); err != nil {
			return nil, 0, 0, fmt.Errorf("store: ListProductReviews failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("store: ListProductReviews iteration error: %w", err)
	}
	return reviews, totalCount, avgRating, nil
}

func (s *PostgresStore) ListUserReviews(ctx context.Context, userID uuid.UUID, params ListReviewsParams) ([]domain.Review, int, error) {
	queryArgs := []interface{}{userID}
	whereCondition := "WHERE user_id = $1"
	argID := 2

	if params.Rating != nil {
		whereCondition += fmt.Sprintf(" AND rating = $%d", argID)
		queryArgs = append(queryArgs, *params.Rating)
		argID++
	}

	countQuery := "SELECT COUNT(*) FROM reviews " + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListUserReviews failed to count reviews: %w", err)
	}
	if totalCount == 0 {
		return []domain.Review{}, 0, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM reviews %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		reviewColumns, whereCondition, argID, argID+1)
	finalArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListUserReviews failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0, params.Limit)
	for rows.Next() {
		var r domain.Review
		if err := scanReview(rows, &r); err != nil {
			return nil, 0, fmt.Errorf("store: ListUserReviews failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListUserReviews iteration error: %w", err)
	}
	return reviews, totalCount, nil
}

// UpdateReview edits the author's own review. The caller supplies the
// approval flag; edits do not go back through moderation.
func (s *PostgresStore) UpdateReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	query := `
		UPDATE reviews
		SET rating = $1, title = $2, comment = $3, is_approved = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5 AND user_id = $6
		RETURNING ` + reviewColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		review.Rating, review.Title, review.Comment, review.IsApproved,
		review.ID, review.UserID,
	)

	var updated domain.Review
	if err := scanReview(row, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("store: UpdateReview failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeleteReview(ctx context.Context, reviewID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return fmt.Errorf("store: DeleteReview failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteReview failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

package store

import (
	"context"
	"fmt"

	"medipro-api/internal/domain"
)

const lowStockThreshold = 10

// DashboardStats gathers the admin dashboard aggregates in one round
// trip. Revenue sums total_amount over orders that were neither
// cancelled nor refunded.
func (s *PostgresStore) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM products WHERE is_active = TRUE AND stock_quantity < $1),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = $2),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status NOT IN ($3, $4)),
			(SELECT COUNT(*) FROM reviews);
	`
	var stats domain.DashboardStats
	err := s.db.QueryRowContext(ctx, query,
		lowStockThreshold, domain.OrderPending, domain.OrderCancelled, domain.OrderRefunded,
	).Scan(
		&stats.Users.Total, &stats.Users.Active,
		&stats.Products.Total, &stats.Products.Active, &stats.Products.LowStock,
		&stats.Orders.Total, &stats.Orders.Pending,
		&stats.Revenue.Total,
		&stats.Reviews.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("store: DashboardStats failed to scan aggregates: %w", err)
	}
	return &stats, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medipro-api/internal/domain"
)

const orderColumns = `id, order_number, user_id, subtotal, shipping_cost, tax_amount, discount_amount, total_amount,
		status, payment_status, shipping_address, billing_address,
		customer_name, customer_email, customer_phone,
		payment_method, payment_id, tracking_number, courier_service,
		estimated_delivery_date, delivered_at, customer_notes, admin_notes,
		created_at, updated_at`

const orderItemColumns = "id, order_id, product_id, product_name, product_sku, quantity, price_at_purchase, subtotal, created_at"

func scanOrder(row interface{ Scan(...interface{}) error }, o *domain.Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID,
		&o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.DiscountAmount, &o.TotalAmount,
		&o.Status, &o.PaymentStatus,
		&o.ShippingAddress, &o.BillingAddress,
		&o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.PaymentMethod, &o.PaymentID, &o.TrackingNumber, &o.CourierService,
		&o.EstimatedDeliveryDate, &o.DeliveredAt, &o.CustomerNotes, &o.AdminNotes,
		&o.CreatedAt, &o.UpdatedAt,
	)
}

func scanOrderItem(row interface{ Scan(...interface{}) error }, item *domain.OrderItem) error {
	return row.Scan(
		&item.ID, &item.OrderID, &item.ProductID,
		&item.ProductName, &item.ProductSKU,
		&item.Quantity, &item.PriceAtPurchase, &item.Subtotal,
		&item.CreatedAt,
	)
}

// generateOrderNumber builds the human-facing order label:
// MP-<timestamp>-<4 random hex chars>. Uniqueness is enforced by the
// order id, not the label.
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("MP-%s-%s", now.Format("20060102150405"), suffix)
}

type checkoutLine struct {
	productID   uuid.UUID
	productName string
	productSKU  *string
	price       float64
	stock       int
	active      bool
	quantity    int
}

// CreateOrderFromCart converts the user's cart into an order in one
// transaction. Line items snapshot the product at its live price, and
// stock is taken with a conditional decrement so a concurrent checkout
// of the last units rolls the loser back instead of going negative.
func (s *PostgresStore) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error) {
	var order domain.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT p.id, p.name, p.sku, p.price, p.stock_quantity, p.is_active, ci.quantity
			FROM cart_items ci
			JOIN products p ON p.id = ci.product_id
			WHERE ci.user_id = $1
			ORDER BY ci.created_at;
		`, userID)
		if err != nil {
			return fmt.Errorf("store: CreateOrderFromCart failed to load cart: %w", err)
		}

		var lines []checkoutLine
		for rows.Next() {
			var l checkoutLine
			if err := rows.Scan(&l.productID, &l.productName, &l.productSKU, &l.price, &l.stock, &l.active, &l.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("store: CreateOrderFromCart failed to scan cart row: %w", err)
			}
			lines = append(lines, l)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("store: CreateOrderFromCart iteration error: %w", err)
		}
		rows.Close()

		if len(lines) == 0 {
			return ErrCartEmpty
		}

		var subtotal float64
		for _, l := range lines {
			if !l.active {
				return ErrProductInactive
			}
			if l.quantity > l.stock {
				return ErrInsufficientStock
			}
			subtotal += l.price * float64(l.quantity)
		}
		shipping := domain.ShippingCost(subtotal)
		total := subtotal + shipping

		orderID := uuid.New()
		orderNumber := generateOrderNumber(time.Now())
		row := tx.QueryRowContext(ctx, `
			INSERT INTO orders (id, order_number, user_id, subtotal, shipping_cost, tax_amount, discount_amount, total_amount,
				status, payment_status, shipping_address, billing_address,
				customer_name, customer_email, customer_phone, payment_method, customer_notes)
			VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING `+orderColumns+`;
		`, orderID, orderNumber, userID, subtotal, shipping, total,
			domain.OrderPending, domain.PaymentPending,
			input.ShippingAddress, input.BillingAddress,
			input.CustomerName, input.CustomerEmail, input.CustomerPhone,
			input.PaymentMethod, input.CustomerNotes,
		)
		if err := scanOrder(row, &order); err != nil {
			return fmt.Errorf("store: CreateOrderFromCart failed to insert order: %w", err)
		}

		for _, l := range lines {
			item := domain.OrderItem{
				ID:              uuid.New(),
				OrderID:         orderID,
				ProductName:     l.productName,
				ProductSKU:      l.productSKU,
				Quantity:        l.quantity,
				PriceAtPurchase: l.price,
				Subtotal:        l.price * float64(l.quantity),
			}
			productID := l.productID
			item.ProductID = &productID

			itemRow := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (id, order_id, product_id, product_name, product_sku, quantity, price_at_purchase, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING `+orderItemColumns+`;
			`, item.ID, item.OrderID, item.ProductID, item.ProductName, item.ProductSKU,
				item.Quantity, item.PriceAtPurchase, item.Subtotal,
			)
			var created domain.OrderItem
			if err := scanOrderItem(itemRow, &created); err != nil {
				return fmt.Errorf("store: CreateOrderFromCart failed to insert order item: %w", err)
			}
			order.Items = append(order.Items, created)

			result, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - $1, updated_at = CURRENT_TIMESTAMP
				WHERE id = $2 AND stock_quantity >= $1
			`, l.quantity, l.productID)
			if err != nil {
				return fmt.Errorf("store: CreateOrderFromCart failed to decrement stock: %w", err)
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("store: CreateOrderFromCart failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("store: CreateOrderFromCart failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2;`
	var order domain.Order
	if err := scanOrder(s.db.QueryRowContext(ctx, query, orderID, userID), &order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("store: GetOrder failed to scan row: %w", err)
	}
	if err := s.loadOrderItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderAdmin looks up an order without an ownership check.
func (s *PostgresStore) GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1;`
	var order domain.Order
	if err := scanOrder(s.db.QueryRowContext(ctx, query, orderID), &order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("store: GetOrderAdmin failed to scan row: %w", err)
	}
	if err := s.loadOrderItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *PostgresStore) loadOrderItems(ctx context.Context, order *domain.Order) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY created_at`,
		order.ID)
	if err != nil {
		return fmt.Errorf("store: loadOrderItems failed to query items: %w", err)
	}
	defer rows.Close()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := scanOrderItem(rows, &item); err != nil {
			return fmt.Errorf("store: loadOrderItems failed to scan item row: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("store: loadOrderItems iteration error: %w", err)
	}
	return nil
}

// ListOrders returns order headers without line items, newest first.
func (s *PostgresStore) ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.Order, int, error) {
	var queryArgs []interface{}
	var whereClauses []string
	argID := 1

	if params.UserID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("user_id = $%d", argID))
		queryArgs = append(queryArgs, *params.UserID)
		argID++
	}
	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argID))
		queryArgs = append(queryArgs, *params.Status)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM orders" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders failed to count orders: %w", err)
	}
	if totalCount == 0 {
		return []domain.Order{}, 0, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, whereCondition, argID, argID+1)
	finalArgs := append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, finalArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, params.Limit)
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("store: ListOrders failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders iteration error: %w", err)
	}
	return orders, totalCount, nil
}

// CancelOrder cancels a pending or confirmed order owned by the user.
// Stock is restored for every line whose product still exists; a paid
// order moves to payment refunded.
func (s *PostgresStore) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var status domain.OrderStatus
		var paymentStatus domain.PaymentStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status, payment_status FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
			orderID, userID,
		).Scan(&status, &paymentStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("store: CancelOrder failed to load order: %w", err)
		}
		if !status.Cancellable() {
			return ErrOrderNotCancellable
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE products p
			SET stock_quantity = p.stock_quantity + oi.quantity, updated_at = CURRENT_TIMESTAMP
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id
		`, orderID); err != nil {
			return fmt.Errorf("store: CancelOrder failed to restore stock: %w", err)
		}

		newPayment := paymentStatus
		if paymentStatus == domain.PaymentPaid {
			newPayment = domain.PaymentRefunded
		}
		row := tx.QueryRowContext(ctx, `
			UPDATE orders
			SET status = $1, payment_status = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $3
			RETURNING `+orderColumns+`;
		`, domain.OrderCancelled, newPayment, orderID)
		if err := scanOrder(row, &order); err != nil {
			return fmt.Errorf("store: CancelOrder failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.loadOrderItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus sets an order's lifecycle status (admin op). Moving
// to delivered marks the payment paid and stamps delivered_at; moving a
// paid order to cancelled refunds it.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	var order domain.Order
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var paymentStatus domain.PaymentStatus
		err := tx.QueryRowContext(ctx,
			`SELECT payment_status FROM orders WHERE id = $1 FOR UPDATE`, orderID,
		).Scan(&paymentStatus)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("store: UpdateOrderStatus failed to load order: %w", err)
		}

		newPayment := paymentStatus
		var deliveredAt interface{}
		switch status {
		case domain.OrderDelivered:
			newPayment = domain.PaymentPaid
			deliveredAt = time.Now()
		case domain.OrderCancelled:
			if paymentStatus == domain.PaymentPaid {
				newPayment = domain.PaymentRefunded
			}
		}

		row := tx.QueryRowContext(ctx, `
			UPDATE orders
			SET status = $1, payment_status = $2, delivered_at = COALESCE($3, delivered_at), updated_at = CURRENT_TIMESTAMP
			WHERE id = $4
			RETURNING `+orderColumns+`;
		`, status, newPayment, deliveredAt, orderID)
		if err := scanOrder(row, &order); err != nil {
			return fmt.Errorf("store: UpdateOrderStatus failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.loadOrderItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

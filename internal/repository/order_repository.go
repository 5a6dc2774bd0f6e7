package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/autoparts-tn/orders-api/internal/database"
	"github.com/autoparts-tn/orders-api/internal/models"
	"github.com/autoparts-tn/orders-api/pkg/logger"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDatabase             = errors.New("database error")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
)

const uniqueViolation = "23505"

const orderColumns = `
	id, order_number, user_id, customer_email, customer_first_name,
	customer_last_name, customer_phone, shipping_address_id, billing_address_id,
	subtotal, shipping_cost, tax_amount, total_amount, currency, status,
	payment_status, payment_method, payment_intent_id, notes, source,
	created_at, updated_at, placed_at, shipped_at, delivered_at, cancelled_at
`

// OrderRepository handles database operations for the order aggregate:
// the order row, its items and its status history.
type OrderRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *database.Database, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// BeginTx starts a transaction for a compound write.
func (r *OrderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return tx, nil
}

// CreateInTx inserts the order row within a transaction. A unique-constraint
// hit on order_number is reported as ErrDuplicateOrderNumber so callers can
// distinguish the designed collision from other failures.
func (r *OrderRepository) CreateInTx(tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, user_id, customer_email, customer_first_name,
			customer_last_name, customer_phone, shipping_address_id, billing_address_id,
			subtotal, shipping_cost, tax_amount, total_amount, currency, status,
			payment_status, payment_method, payment_intent_id, notes, source,
			created_at, updated_at, placed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23
		)
	`

	_, err := tx.Exec(
		query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.CustomerEmail,
		order.CustomerFirstName,
		order.CustomerLastName,
		order.CustomerPhone,
		order.ShippingAddressID,
		order.BillingAddressID,
		order.Subtotal,
		order.ShippingCost,
		order.TaxAmount,
		order.TotalAmount,
		order.Currency,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.PaymentIntentID,
		order.Notes,
		order.Source,
		order.CreatedAt,
		order.UpdatedAt,
		order.PlacedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateOrderNumber, order.OrderNumber)
		}
		return fmt.Errorf("failed to create order in transaction: %w", err)
	}

	return nil
}

// CreateItemsInTx inserts the order's line items within a transaction.
func (r *OrderRepository) CreateItemsInTx(tx *sql.Tx, items []*models.OrderItem) error {
	query := `
		INSERT INTO order_items (
			id, order_id, article_id, article_no, name, supplier, price, quantity, image
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, item := range items {
		_, err := tx.Exec(
			query,
			item.ID,
			item.OrderID,
			item.ArticleID,
			item.ArticleNo,
			item.Name,
			item.Supplier,
			item.Price,
			item.Quantity,
			item.Image,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item in transaction: %w", err)
		}
	}

	return nil
}

// AppendHistoryInTx inserts a status history entry within a transaction.
func (r *OrderRepository) AppendHistoryInTx(tx *sql.Tx, entry *models.OrderStatusHistory) error {
	query := `
		INSERT INTO order_status_history (id, order_id, status, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(
		query,
		entry.ID,
		entry.OrderID,
		entry.Status,
		entry.Notes,
		entry.CreatedBy,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append status history in transaction: %w", err)
	}

	return nil
}

// UpdateStatusInTx persists a status transition (status, timestamps) within
// a transaction.
func (r *OrderRepository) UpdateStatusInTx(tx *sql.Tx, order *models.Order) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2, placed_at = $3, shipped_at = $4,
		    delivered_at = $5, cancelled_at = $6
		WHERE id = $7
	`

	result, err := tx.Exec(
		query,
		order.Status,
		order.UpdatedAt,
		order.PlacedAt,
		order.ShippedAt,
		order.DeliveredAt,
		order.CancelledAt,
		order.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update order status in transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePaymentInTx persists a payment-status change within a transaction.
func (r *OrderRepository) UpdatePaymentInTx(tx *sql.Tx, order *models.Order) error {
	query := `
		UPDATE orders
		SET payment_status = $1, payment_intent_id = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := tx.Exec(
		query,
		order.PaymentStatus,
		order.PaymentIntentID,
		order.UpdatedAt,
		order.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update payment status in transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves an order with addresses, items and full descending
// status history.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getOne(ctx, "id", id)
}

// GetByNumber retrieves an order by its human-readable number.
func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.getOne(ctx, "order_number", orderNumber)
}

func (r *OrderRepository) getOne(ctx context.Context, column, value string) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s = $1`, orderColumns, column)

	var order models.Order
	err := r.db.DB.GetContext(ctx, &order, query, value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get order", "error", err, column, value)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := r.loadAddresses(ctx, &order); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return nil, err
	}
	if err := r.loadHistory(ctx, &order, 0); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListByUser retrieves a user's orders newest first, each with items and
// only its most recent history entry.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, orderColumns)

	var orders []*models.Order
	err := r.db.DB.SelectContext(ctx, &orders, query, userID)

	if err != nil {
		r.logger.Error("Failed to get orders by user ID", "error", err, "userID", userID)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, err
		}
		if err := r.loadHistory(ctx, order, 1); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// List retrieves a page of orders matching the filter plus the total
// matching count. Each order carries items, addresses and its most recent
// history entry.
func (r *OrderRepository) List(ctx context.Context, filter ListFilter) ([]*models.Order, int, error) {
	where, args := filter.buildWhere()

	countQuery := `SELECT COUNT(*) FROM orders o ` + where

	var total int
	if err := r.db.DB.GetContext(ctx, &total, countQuery, args...); err != nil {
		r.logger.Error("Failed to count orders", "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	pageQuery := fmt.Sprintf(`
		SELECT %s FROM orders o %s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, qualifiedOrderColumns(), where, len(args)+1, len(args)+2)

	args = append(args, filter.Limit, filter.Offset())

	var orders []*models.Order
	if err := r.db.DB.SelectContext(ctx, &orders, pageQuery, args...); err != nil {
		r.logger.Error("Failed to list orders", "error", err)
		return nil, 0, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	for _, order := range orders {
		if err := r.loadAddresses(ctx, order); err != nil {
			return nil, 0, err
		}
		if err := r.loadItems(ctx, order); err != nil {
			return nil, 0, err
		}
		if err := r.loadHistory(ctx, order, 1); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

// Stats computes the dashboard rollup with a single aggregate query rather
// than pulling rows into the application tier.
func (r *OrderRepository) Stats(ctx context.Context) (*models.OrderStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_orders,
			COUNT(*) FILTER (WHERE status IN ('PENDING', 'CONFIRMED', 'PROCESSING', 'SHIPPED')) AS in_progress,
			COUNT(*) FILTER (WHERE status = 'DELIVERED') AS delivered_orders,
			COALESCE(SUM(total_amount), 0) AS total_revenue
		FROM orders
	`

	var stats struct {
		TotalOrders     int     `db:"total_orders"`
		InProgress      int     `db:"in_progress"`
		DeliveredOrders int     `db:"delivered_orders"`
		TotalRevenue    float64 `db:"total_revenue"`
	}

	if err := r.db.DB.GetContext(ctx, &stats, query); err != nil {
		r.logger.Error("Failed to compute order stats", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &models.OrderStats{
		TotalOrders:     stats.TotalOrders,
		InProgress:      stats.InProgress,
		DeliveredOrders: stats.DeliveredOrders,
		TotalRevenue:    stats.TotalRevenue,
	}, nil
}

func (r *OrderRepository) loadAddresses(ctx context.Context, order *models.Order) error {
	query := `
		SELECT id, user_id, type, first_name, last_name, company,
		       address_line1, address_line2, city, state, postal_code,
		       country, phone, is_default, created_at
		FROM addresses
		WHERE id = $1
	`

	var shipping models.Address
	if err := r.db.DB.GetContext(ctx, &shipping, query, order.ShippingAddressID); err != nil {
		r.logger.Error("Failed to load shipping address", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	order.ShippingAddress = &shipping

	if order.BillingAddressID == order.ShippingAddressID {
		order.BillingAddress = &shipping
		return nil
	}

	var billing models.Address
	if err := r.db.DB.GetContext(ctx, &billing, query, order.BillingAddressID); err != nil {
		r.logger.Error("Failed to load billing address", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	order.BillingAddress = &billing

	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, order *models.Order) error {
	query := `
		SELECT id, order_id, article_id, article_no, name, supplier, price, quantity, image
		FROM order_items
		WHERE order_id = $1
	`

	var items []*models.OrderItem
	if err := r.db.DB.SelectContext(ctx, &items, query, order.ID); err != nil {
		r.logger.Error("Failed to load order items", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	order.Items = items

	return nil
}

// loadHistory loads the order's status history newest first; limit 0 means
// the full trail.
func (r *OrderRepository) loadHistory(ctx context.Context, order *models.Order, limit int) error {
	query := `
		SELECT id, order_id, status, notes, created_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at DESC
	`

	args := []interface{}{order.ID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	var history []*models.OrderStatusHistory
	if err := r.db.DB.SelectContext(ctx, &history, query, args...); err != nil {
		r.logger.Error("Failed to load status history", "error", err, "orderID", order.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	order.History = history

	return nil
}

func qualifiedOrderColumns() string {
	return `
		o.id, o.order_number, o.user_id, o.customer_email, o.customer_first_name,
		o.customer_last_name, o.customer_phone, o.shipping_address_id, o.billing_address_id,
		o.subtotal, o.shipping_cost, o.tax_amount, o.total_amount, o.currency, o.status,
		o.payment_status, o.payment_method, o.payment_intent_id, o.notes, o.source,
		o.created_at, o.updated_at, o.placed_at, o.shipped_at, o.delivered_at, o.cancelled_at
	`
}

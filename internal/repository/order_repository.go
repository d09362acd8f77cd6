package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"threadline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrDuplicateReference is returned when an order reference collides with
// an existing one; the service regenerates and retries.
var ErrDuplicateReference = errors.New("duplicate order reference")

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

const orderColumns = `id, reference, user_id, is_guest, guest_email,
	subtotal, shipping_cost, total,
	ship_name, ship_phone, ship_email, ship_address, ship_city, ship_notes,
	payment_method, payment_status, paid_at, transaction_id,
	status, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.IsGuestOrder, &o.GuestEmail,
		&o.Subtotal, &o.ShippingCost, &o.Total,
		&o.ShippingAddress.Name, &o.ShippingAddress.Phone, &o.ShippingAddress.Email,
		&o.ShippingAddress.Address, &o.ShippingAddress.City, &o.ShippingAddress.Notes,
		&o.Payment.Method, &o.Payment.Status, &o.Payment.PaidAt, &o.Payment.TransactionID,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.Reference, order.UserID, order.IsGuestOrder, order.GuestEmail,
		order.Subtotal, order.ShippingCost, order.Total,
		order.ShippingAddress.Name, order.ShippingAddress.Phone, order.ShippingAddress.Email,
		order.ShippingAddress.Address, order.ShippingAddress.City, order.ShippingAddress.Notes,
		order.Payment.Method, order.Payment.Status, order.Payment.PaidAt, order.Payment.TransactionID,
		order.Status, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_reference_key" {
			r.logger.Warn().
				Str("reference", order.Reference).
				Msg("order reference collision")
			return ErrDuplicateReference
		}
		r.logger.Error().
			Err(err).
			Str("reference", order.Reference).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("reference", order.Reference).
		Msg("order created")

	return nil
}

// CreateOrderItems inserts the order's line snapshots within the provided
// transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, item_name, size, color, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, item.ProductID, item.ItemName,
			item.Size, item.Color, item.Price, item.Quantity, item.Image,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created")

	return nil
}

// GetByReference retrieves an order by reference, scoped to the acting
// identity. Ownership mismatch and not-found are indistinguishable so the
// caller cannot leak order existence.
func (r *orderRepository) GetByReference(ctx context.Context, reference string, userID *uuid.UUID) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE reference = $1
		  AND (($2::uuid IS NULL AND user_id IS NULL) OR user_id = $2)
	`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, reference, userID), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("reference", reference).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("reference", reference).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

// GetByID retrieves an order by primary key without an ownership filter.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, id), &order)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Order{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryOrders(ctx, query, userID, limit, offset)
}

// List retrieves all orders, newest first.
func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryOrders(ctx, query, limit, offset)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	refs := make([]*model.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.attachItems(ctx, refs); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*model.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	query := `
		SELECT id, order_id, product_id, item_name, size, color, price, quantity, image
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ItemName,
			&item.Size, &item.Color, &item.Price, &item.Quantity, &item.Image); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// UpdateStatus writes a new fulfilment status.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("status", string(status)).
			Msg("failed to update order status")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// UpdatePayment writes a new payment status plus optional paid-at
// timestamp and transaction id.
func (r *orderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, status model.PaymentStatus, transactionID *string, paidAt *time.Time) (*model.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = $2, transaction_id = $3, paid_at = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, transactionID, paidAt, time.Now())
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", id.String()).
			Str("payment_status", string(status)).
			Msg("failed to update payment")
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Stats aggregates the order-derived dashboard counters in one round
// trip. Product and customer counts come from their own repositories.
func (r *orderRepository) Stats(ctx context.Context) (*model.OrderStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM orders WHERE status = 'pending'),
			(SELECT COALESCE(SUM(total), 0) FROM orders WHERE payment_status = 'paid')
	`

	var stats model.OrderStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.OrderCount,
		&stats.PendingOrders,
		&stats.PaidRevenue,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query dashboard stats")
		return nil, fmt.Errorf("failed to query dashboard stats: %w", err)
	}

	return &stats, nil
}

package repository

import (
	"context"
	"fmt"

	"threadline/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements CartRepository using PostgreSQL. The unique
// (user_id, product_id, size) index carries the one-line-per-pair
// invariant; Upsert folds repeated adds into the existing line.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ListByUser retrieves all cart lines for a user.
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, item_name, sub_category, size, color, quantity, price, image, added_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY added_at, id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.ItemName,
			&item.SubCategory, &item.Size, &item.Color, &item.Quantity,
			&item.Price, &item.Image, &item.AddedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// Upsert inserts a cart line, or adds its quantity onto the existing line
// with the same (userID, productID, size), capping the sum at maxQuantity.
func (r *cartRepository) Upsert(ctx context.Context, item *model.CartItem, maxQuantity int) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, item_name, sub_category, size, color, quantity, price, image, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, product_id, size)
		DO UPDATE SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $12),
		              price = EXCLUDED.price,
		              image = EXCLUDED.image
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID, item.UserID, item.ProductID, item.ItemName, item.SubCategory,
		item.Size, item.Color, item.Quantity, item.Price, item.Image, item.AddedAt,
		maxQuantity,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", item.UserID.String()).
			Str("product_id", item.ProductID.String()).
			Str("size", item.Size).
			Msg("failed to upsert cart item")
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// SetQuantity writes an absolute quantity for one line.
func (r *cartRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, size string, quantity int) (bool, error) {
	query := `
		UPDATE cart_items
		SET quantity = $4
		WHERE user_id = $1 AND product_id = $2 AND size = $3
	`

	tag, err := r.pool.Exec(ctx, query, userID, productID, size, quantity)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to update cart quantity")
		return false, fmt.Errorf("failed to update cart quantity: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Remove deletes one line.
func (r *cartRepository) Remove(ctx context.Context, userID, productID uuid.UUID, size string) (bool, error) {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2 AND size = $3`

	tag, err := r.pool.Exec(ctx, query, userID, productID, size)
	if err != nil {
		r.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID.String()).
			Msg("failed to remove cart item")
		return false, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Clear deletes all lines for a user.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

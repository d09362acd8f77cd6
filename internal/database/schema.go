package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the full storefront schema. The CHECK on variant_sizes.stock is
// the last line of defence for the stock >= 0 invariant; the order engine
// never relies on it alone.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	verified BOOLEAN NOT NULL DEFAULT FALSE,
	role TEXT NOT NULL DEFAULT 'user',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	batch_name TEXT NOT NULL DEFAULT '',
	main_category TEXT NOT NULL DEFAULT '',
	sub_category TEXT NOT NULL DEFAULT '',
	gender TEXT NOT NULL DEFAULT 'unisex',
	item_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price BIGINT NOT NULL CHECK (price >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS product_variants (
	id UUID PRIMARY KEY,
	product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	color TEXT NOT NULL,
	images TEXT[] NOT NULL DEFAULT '{}',
	position INT NOT NULL DEFAULT 0,
	UNIQUE (product_id, color)
);

CREATE TABLE IF NOT EXISTS variant_sizes (
	id UUID PRIMARY KEY,
	variant_id UUID NOT NULL REFERENCES product_variants(id) ON DELETE CASCADE,
	size TEXT NOT NULL,
	stock INT NOT NULL CHECK (stock >= 0),
	UNIQUE (variant_id, size)
);

CREATE TABLE IF NOT EXISTS cart_items (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	product_id UUID NOT NULL,
	item_name TEXT NOT NULL DEFAULT '',
	sub_category TEXT NOT NULL DEFAULT '',
	size TEXT NOT NULL,
	color TEXT NOT NULL,
	quantity INT NOT NULL CHECK (quantity >= 1),
	price BIGINT NOT NULL DEFAULT 0,
	image TEXT NOT NULL DEFAULT '',
	added_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (user_id, product_id, size)
);

CREATE TABLE IF NOT EXISTS orders (
	id UUID PRIMARY KEY,
	reference TEXT NOT NULL UNIQUE,
	user_id UUID,
	is_guest BOOLEAN NOT NULL,
	guest_email TEXT NOT NULL DEFAULT '',
	subtotal BIGINT NOT NULL,
	shipping_cost BIGINT NOT NULL,
	total BIGINT NOT NULL,
	ship_name TEXT NOT NULL DEFAULT '',
	ship_phone TEXT NOT NULL DEFAULT '',
	ship_email TEXT NOT NULL DEFAULT '',
	ship_address TEXT NOT NULL DEFAULT '',
	ship_city TEXT NOT NULL DEFAULT '',
	ship_notes TEXT NOT NULL DEFAULT '',
	payment_method TEXT NOT NULL,
	payment_status TEXT NOT NULL DEFAULT 'pending',
	paid_at TIMESTAMPTZ,
	transaction_id TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);

CREATE TABLE IF NOT EXISTS order_items (
	id UUID PRIMARY KEY,
	order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id UUID NOT NULL,
	item_name TEXT NOT NULL,
	size TEXT NOT NULL,
	color TEXT NOT NULL,
	price BIGINT NOT NULL,
	quantity INT NOT NULL,
	image TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// Migrate applies the schema. All statements are idempotent so this runs
// unconditionally at startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info().Msg("database schema applied")
	return nil
}

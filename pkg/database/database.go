package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewPool(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("database connected",
		zap.String("host", config.ConnConfig.Host),
		zap.String("database", config.ConnConfig.Database),
		zap.Int32("max_conns", config.MaxConns))
	return pool, nil
}

// Beginner starts transactions; *pgxpool.Pool satisfies it
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// schema is applied in order inside one transaction. Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		sku VARCHAR(100),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255),
		phone VARCHAR(50),
		address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS restaurant_tables (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		table_number VARCHAR(20) NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
		current_order_id UUID,
		location VARCHAR(100),
		position_x INTEGER,
		position_y INTEGER,
		width INTEGER,
		height INTEGER,
		shape VARCHAR(20),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, table_number)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		order_number VARCHAR(32) NOT NULL,
		order_date TIMESTAMPTZ NOT NULL,
		customer_id UUID REFERENCES customers(id) ON DELETE SET NULL,
		table_id UUID REFERENCES restaurant_tables(id) ON DELETE SET NULL,
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL,
		order_type VARCHAR(20) NOT NULL,
		payment_method VARCHAR(20),
		payment_reference VARCHAR(255),
		number_of_guests INTEGER NOT NULL DEFAULT 0,
		special_instructions TEXT,
		created_by UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (tenant_id, order_number)
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		tenant_id UUID NOT NULL,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(12,2) NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// restaurant_tables and orders reference each other, so this key is
	// added once both exist
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'restaurant_tables_current_order_fk') THEN
			ALTER TABLE restaurant_tables ADD CONSTRAINT restaurant_tables_current_order_fk
				FOREIGN KEY (current_order_id) REFERENCES orders(id) ON DELETE SET NULL;
		END IF;
	END $$`,
	`CREATE INDEX IF NOT EXISTS idx_orders_tenant_status ON orders (tenant_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_tenant_table ON orders (tenant_id, table_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_tenant_customer ON orders (tenant_id, customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_tenant_date ON orders (tenant_id, order_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_tenant_name ON products (tenant_id, name)`,
}

// Migrate creates the schema the repositories expect
func Migrate(ctx context.Context, db Beginner, logger *zap.Logger) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	logger.Info("database schema up to date", zap.Int("statements", len(schema)))
	return nil
}

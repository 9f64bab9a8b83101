package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	stock      INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS orders (
	id               TEXT PRIMARY KEY,
	items            JSONB NOT NULL DEFAULT '[]',
	fulfillment_type TEXT NOT NULL DEFAULT 'shipping',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS stock_movements (
	id         TEXT PRIMARY KEY,
	book_id    TEXT NOT NULL,
	order_id   TEXT NOT NULL,
	change     INTEGER NOT NULL,
	reason     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_order ON stock_movements (order_id);
`

// Migrate bootstraps the schema on startup; every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}

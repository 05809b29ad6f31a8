package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewPgxPool returns a live connection pool for dsn. One long-lived
// pool serves the whole process; callers must Close it on shutdown.
func NewPgxPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables on first start.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  user_id            BIGINT PRIMARY KEY,
  subscribed_until   TIMESTAMPTZ,
  last_request_date  DATE,
  requests_today     INT NOT NULL DEFAULT 0,
  pending_invoice_id TEXT
);
CREATE TABLE IF NOT EXISTS invoices (
  invoice_id   TEXT PRIMARY KEY,
  user_id      BIGINT NOT NULL,
  amount_usd   NUMERIC(10,2) NOT NULL,
  pay_link     TEXT NOT NULL DEFAULT '',
  status       TEXT NOT NULL DEFAULT 'created',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  activated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS invoices_user_id_idx ON invoices (user_id);
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

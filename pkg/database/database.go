package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client holds the database connection pool
type Client struct {
	Pool *pgxpool.Pool
}

// Competitor records are stored document-style: the stable keys live in
// columns, the descriptive payload in a JSONB blob. The partial-free
// UNIQUE (name, search_id) constraint is the sole dedup mechanism for
// concurrent upserts within one search.
const schema = `
CREATE TABLE IF NOT EXISTS competitors (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	search_id  TEXT,
	user_id    TEXT,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, search_id)
);

CREATE INDEX IF NOT EXISTS competitors_search_id_idx ON competitors (search_id);
CREATE INDEX IF NOT EXISTS competitors_user_id_idx ON competitors (user_id);
`

// NewClient creates a new database client and applies migrations
func NewClient(ctx context.Context, databaseURL string) (*Client, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed pinging postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed creating schema resources: %w", err)
	}

	log.Println("✅ Database connected and migrations applied")

	return &Client{
		Pool: pool,
	}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	c.Pool.Close()
	return nil
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}

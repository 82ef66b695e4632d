package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key TEXT PRIMARY KEY,
    value BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PostgresGateway implements Gateway against a kv_store table.
type PostgresGateway struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

func NewPostgresGateway(db *sql.DB) *PostgresGateway {
	return &PostgresGateway{DB: db}
}

// OpenPostgres connects to dsn, verifies the connection and creates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}

func (g *PostgresGateway) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := g.DB.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: select %s: %v", ErrStorageUnavailable, key, err)
	}
	return value, true, nil
}

// Set upserts the whole value in a single statement.
func (g *PostgresGateway) Set(ctx context.Context, key string, value []byte) error {
	_, err := g.DB.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (g *PostgresGateway) Remove(ctx context.Context, key string) error {
	if _, err := g.DB.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps documents in a single jsonb table. It is selected when
// a database URL is configured; the schema is created on open.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the documents table
// exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS documents (
			key        text PRIMARY KEY,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Read returns the document for key, or def when no row exists.
func (s *PostgresStore) Read(ctx context.Context, key string, def json.RawMessage) (json.RawMessage, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM documents WHERE key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", key, err)
	}
	return doc, nil
}

// Write upserts the document for key.
func (s *PostgresStore) Write(ctx context.Context, key string, doc json.RawMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO documents (key, doc, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		key, doc)
	if err != nil {
		return fmt.Errorf("write document %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresBackend stores values in the kv_entries table created by the
// 00001 migration. Values are kept as jsonb.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value::text FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get kv entry %s: %w", key, err)
	}
	return []byte(value), nil
}

func (p *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := p.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("failed to set kv entry %s: %w", key, err)
	}
	return nil
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete kv entry %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the pool belongs to the database service.
func (p *PostgresBackend) Close() error {
	return nil
}

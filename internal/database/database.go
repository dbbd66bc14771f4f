package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pos-till/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service owns the Postgres connection pool backing the key-value store.
type Service struct {
	db *sql.DB
}

// DSN builds a pgx connection string from configuration.
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Schema)
}

// New opens the pool and verifies connectivity.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Service, error) {
	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Service{db: db}, nil
}

func (s *Service) DB() *sql.DB {
	return s.db
}

// Health reports pool statistics for the health endpoint.
func (s *Service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)
	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	return stats
}

func (s *Service) Close() error {
	return s.db.Close()
}

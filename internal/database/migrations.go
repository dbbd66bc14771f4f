package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"pos-till/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations brings the schema up to date using the embedded migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *zap.Logger) error {
	provider, err := newProvider(db, migrations.FS)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, res := range results {
		logger.Info("Applied migration",
			zap.Int64("version", res.Source.Version),
			zap.String("file", res.Source.Path),
			zap.Duration("took", res.Duration),
		)
	}
	logger.Info("Migrations completed", zap.Int("applied", len(results)))
	return nil
}

// PendingMigrations counts migrations not yet applied.
func PendingMigrations(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := newProvider(db, migrations.FS)
	if err != nil {
		return 0, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration status: %w", err)
	}
	pending := 0
	for _, s := range statuses {
		if s.State == goose.StatePending {
			pending++
		}
	}
	return pending, nil
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/infra/config"
	"github.com/JorgeDuranS/AppSegura/internal/migrations"
)

// RunMigrations applies the embedded schema migrations before the pool is
// handed to repositories.
func RunMigrations(ctx context.Context, cfg config.PostgresSettings, log *zap.Logger) error {
	db, err := sql.Open("pgx", DSN(cfg))
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Info("database migrations applied", zap.String("database", cfg.Database))
	return nil
}

package cmd

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/templui/pixaro/internal/config"
	"github.com/templui/pixaro/internal/db"
	"github.com/templui/pixaro/internal/logger"
)

// open loads config, sets up logging and connects to the configured database.
func open(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	logger.Init(logger.Options{Development: cfg.IsDevelopment(), Environment: cfg.AppEnv})

	database, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}

// withMigrator runs fn against the configured database.
func withMigrator(ctx context.Context, fn func(*db.Migrator) error) error {
	cfg, database, err := open(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := db.NewMigrator(database.DB, cfg.DBDriver)
	if err != nil {
		return err
	}
	return fn(m)
}

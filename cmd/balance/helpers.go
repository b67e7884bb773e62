package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/balance-history/internal/config"
	"github.com/Veraticus/balance-history/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig resolves the typed configuration from the global viper.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens and migrates the configured database.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("Opened database", "path", cfg.DatabasePath)
	return store, nil
}

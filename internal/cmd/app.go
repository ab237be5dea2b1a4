package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dkorolev/flatgrep/internal/cache"
	"github.com/dkorolev/flatgrep/internal/config"
	"github.com/dkorolev/flatgrep/internal/engine"
	"github.com/dkorolev/flatgrep/internal/indexer"
	"github.com/dkorolev/flatgrep/internal/logging"
	"github.com/dkorolev/flatgrep/internal/storage"
)

// databaseFileName is the SQLite file kept in the cache directory.
const databaseFileName = "flatgrep.db"

// app bundles the wired components behind a CLI invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Storage
	engine *engine.Engine
}

// newApp loads configuration from the --config flag and wires storage,
// cache, indexer, and engine. Callers must Close it.
func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger := logging.New(cfg.LogsDir, cfg.LogLevel, verbose)

	store, err := storage.NewSQLiteStorage(filepath.Join(cfg.CacheDir, databaseFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	resultCache := cache.New(cache.Options{
		Enabled:   cfg.CacheEnabled,
		TTL:       cfg.CacheTTL,
		MaxStored: cfg.CacheMaxStored,
		Storage:   store,
		Logger:    logger,
	})
	if err := resultCache.Load(cmd.Context()); err != nil {
		logger.Warn("failed to load persisted cache", "error", err)
	}

	idx := indexer.New(store, cfg, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: engine.New(cfg, store, resultCache, idx, logger),
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	_ = a.store.Close()
}

// Command pagesmith extracts text from documents and maintains their pages.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloudstore/pagesmith/internal/adapters/driven/config/file"
	"github.com/cloudstore/pagesmith/internal/adapters/driven/process"
	"github.com/cloudstore/pagesmith/internal/adapters/driven/storage/memory"
	"github.com/cloudstore/pagesmith/internal/adapters/driven/storage/postgres"
	"github.com/cloudstore/pagesmith/internal/adapters/driven/storage/sqlite"
	"github.com/cloudstore/pagesmith/internal/adapters/driving/cli"
	"github.com/cloudstore/pagesmith/internal/core/domain"
	"github.com/cloudstore/pagesmith/internal/core/ports/driven"
	"github.com/cloudstore/pagesmith/internal/core/services"
	"github.com/cloudstore/pagesmith/internal/extractors"
	"github.com/cloudstore/pagesmith/internal/logger"
	"github.com/cloudstore/pagesmith/internal/paginator"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background(), build); err != nil {
		os.Exit(1)
	}
}

// build wires the pipeline for one CLI invocation.
func build(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	store := openConfig(opts.ConfigDir)
	settings := services.NewSettingsService(store)
	if opts.SettingsOnly {
		return &cli.Services{Settings: settings}, nil
	}

	cfg := file.LoadPipelineConfig(store)
	if opts.DataDir != "" {
		cfg.Storage.DataDir = opts.DataDir
	}
	if cfg.Storage.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(home, ".pagesmith", "data")
	}
	cfg.Normalise()

	logger.Section("Configuration")
	logger.Debug("data dir: %s", cfg.Storage.DataDir)
	logger.Debug("storage driver: %s", cfg.Storage.Driver)

	docs, pages, closeStore, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	var runner driven.CommandRunner = process.NewRunner(cfg.Conversion.Timeout)
	runner = process.NewThrottled(runner, cfg.Conversion.MaxLaunchesPerSecond)

	registry := extractors.NewRegistry(runner, extractors.WithTempDir(os.TempDir()))
	cascade := services.NewCascade(registry.Build(cfg), cfg.Extraction)

	logger.Section("Extraction strategies")
	for _, c := range registry.Capabilities() {
		if c.Available {
			logger.Debug("%s: %d. %s", c.Kind, c.Priority, c.Strategy)
		} else {
			logger.Debug("%s: %s unavailable (%s)", c.Kind, c.Strategy, c.Reason)
		}
	}

	pageService := services.NewPageService(docs, pages, cascade, paginator.New(cfg), cfg,
		services.WithCapabilities(registry.Capabilities))

	return &cli.Services{
		Pages:       pageService,
		Jobs:        services.NewJobQueue(pageService, cfg.Jobs),
		Import:      services.NewImporter(pageService, cfg),
		Settings:    settings,
		ExtractRoot: extractRoot(cfg),
		Close:       closeStore,
	}, nil
}

// openConfig opens the TOML configuration, falling back to an empty store
// held in memory when the config directory cannot be used.
func openConfig(configDir string) driven.ConfigStore {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Warn("config unavailable, using defaults: %v", err)
		return memory.NewConfigStore()
	}
	return store
}

// extractRoot is the directory MCP clients may extract from: the
// configured allowed dir, else the document library.
func extractRoot(cfg domain.PipelineConfig) string {
	if cfg.MCP.AllowedDir != "" {
		return cfg.MCP.AllowedDir
	}
	return filepath.Join(cfg.Storage.DataDir, "files")
}

func openStorage(ctx context.Context, cfg domain.StorageConfig) (driven.DocumentStore, driven.PageStore, func() error, error) {
	switch cfg.Driver {
	case domain.StorageSQLite:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store.DocumentStore(), store.PageStore(), store.Close, nil
	case domain.StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store.DocumentStore(), store.PageStore(), store.Close, nil
	case domain.StorageMemory:
		store := memory.NewStore()
		return store, store, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("storage driver %q: %w", cfg.Driver, domain.ErrInvalidInput)
	}
}

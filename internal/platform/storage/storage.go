// Package storage opens the repositories selected by STORAGE_BACKEND.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/mma_recurring/internal/adapters/database/pgsql"
	"github.com/SscSPs/mma_recurring/internal/adapters/memory"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	"github.com/SscSPs/mma_recurring/internal/platform/config"
	"github.com/SscSPs/mma_recurring/migrations"
	"github.com/SscSPs/mma_recurring/pkg/database"
)

// Open builds the repository provider for cfg.StorageBackend. Pending schema
// migrations are applied first when runMigrations is set. The returned close
// function releases the backend.
func Open(ctx context.Context, cfg *config.Config, runMigrations bool, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage")
		return memory.New().Repositories(), func() {}, nil

	case config.StoragePostgres:
		if runMigrations {
			logger.Info("Running database migrations...")
			if err := migrations.Up(cfg.DatabaseURL, logger); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}

		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool) }, nil
	}
	return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
}

package core

import (
	"context"
	"fmt"

	"colonywork/internal/config"
	"colonywork/internal/infra/persistence/memory"
	"colonywork/internal/infra/persistence/postgres"
	"colonywork/internal/infra/persistence/sqlite"
	"colonywork/pkg/domain"
)

// OpenRecordStore selects a record store backend from the storage settings.
// An empty driver means sqlite.
func OpenRecordStore(ctx context.Context, cfg config.Storage) (domain.RecordStore, error) {
	switch cfg.Driver {
	case config.StorageMemory:
		return memory.NewStore(), nil
	case config.StorageSQLite, "":
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}

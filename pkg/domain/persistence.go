package domain

import "context"

// RecordStore persists the work order records of each colony. Implementations
// must return records in the order they were saved.
type RecordStore interface {
	Save(ctx context.Context, colonyID string, records []Record) error
	Load(ctx context.Context, colonyID string) ([]Record, error)
	Colonies(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, colonyID string) (bool, error)
	Close() error
}

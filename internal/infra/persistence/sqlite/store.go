// Package sqlite persists colony work order records to a SQLite file using the
// pure Go modernc driver. Each colony is one row holding its JSON record batch.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"colonywork/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.RecordStore = (*Store)(nil)

const defaultPath = "colonywork.db"

// Store is a SQLite-backed domain.RecordStore.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and ensures the schema.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS work_orders (
		colony_id TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create work_orders table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save replaces the record batch stored for colonyID.
func (s *Store) Save(ctx context.Context, colonyID string, records []domain.Record) error {
	data, err := domain.MarshalRecords(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO work_orders(colony_id,payload) VALUES(?,?) ON CONFLICT(colony_id) DO UPDATE SET payload=excluded.payload`,
		colonyID, data); err != nil {
		return fmt.Errorf("upsert %s: %w", colonyID, err)
	}
	return nil
}

// Load returns the saved records for colonyID, or nil when the colony has none.
func (s *Store) Load(ctx context.Context, colonyID string) ([]domain.Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM work_orders WHERE colony_id = ?`, colonyID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", colonyID, err)
	}
	records, err := domain.UnmarshalRecords(payload)
	if err != nil {
		return nil, fmt.Errorf("colony %s: %w", colonyID, err)
	}
	return records, nil
}

// Colonies lists stored colony ids in lexical order.
func (s *Store) Colonies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT colony_id FROM work_orders ORDER BY colony_id`)
	if err != nil {
		return nil, fmt.Errorf("select colonies: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the colony row and reports whether it existed.
func (s *Store) Delete(ctx context.Context, colonyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_orders WHERE colony_id = ?`, colonyID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", colonyID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Package postgres provides a Postgres-backed domain.RecordStore using the pgx
// database/sql driver. Each colony is one row holding its records as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"colonywork/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.RecordStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/colonywork?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists colony record batches to Postgres.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using dsn (falls back to defaultDSN)
// and ensures the work_orders table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS work_orders (
		colony_id TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure work_orders table: %w", err)
	}
	return nil
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
		`INSERT INTO work_orders(colony_id,payload) VALUES($1,$2) ON CONFLICT(colony_id) DO UPDATE SET payload=EXCLUDED.payload`,
		colonyID, string(data)); err != nil {
		return fmt.Errorf("upsert %s: %w", colonyID, err)
	}
	return nil
}

// Load returns the saved records for colonyID, or nil when the colony has none.
func (s *Store) Load(ctx context.Context, colonyID string) ([]domain.Record, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM work_orders WHERE colony_id = $1`, colonyID).Scan(&payload)
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
			return nil, fmt.Errorf("scan colony: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate colonies: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the colony row and reports whether it existed.
func (s *Store) Delete(ctx context.Context, colonyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM work_orders WHERE colony_id = $1`, colonyID)
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

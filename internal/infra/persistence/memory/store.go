// Package memory provides an in-process domain.RecordStore. Records are held
// in their JSON encoded form so they read back exactly as a database-backed
// store would return them.
package memory

import (
	"context"
	"sort"
	"sync"

	"colonywork/pkg/domain"
)

var _ domain.RecordStore = (*Store)(nil)

// Store keeps one encoded record batch per colony.
type Store struct {
	mu       sync.RWMutex
	colonies map[string][]byte
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{colonies: make(map[string][]byte)}
}

// Save replaces the records held for colonyID.
func (s *Store) Save(_ context.Context, colonyID string, records []domain.Record) error {
	raw, err := domain.MarshalRecords(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colonies[colonyID] = raw
	return nil
}

// Load returns the records saved for colonyID, or nil when none were saved.
func (s *Store) Load(_ context.Context, colonyID string) ([]domain.Record, error) {
	s.mu.RLock()
	raw, ok := s.colonies[colonyID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return domain.UnmarshalRecords(raw)
}

// Colonies lists the colonies with saved records in lexical order.
func (s *Store) Colonies(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.colonies))
	for id := range s.colonies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete drops the records for colonyID and reports whether any existed.
func (s *Store) Delete(_ context.Context, colonyID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.colonies[colonyID]
	delete(s.colonies, colonyID)
	return ok, nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"colonywork/internal/blob"
	"colonywork/pkg/domain"
)

// ErrNoArchive is returned when archiving without an archive store.
var ErrNoArchive = errors.New("no archive store configured")

const archiveContentType = "application/json"

// ColonyArchive is the document written to the archive store.
type ColonyArchive struct {
	ColonyID string          `json:"colony_id"`
	SavedAt  time.Time       `json:"saved_at"`
	Records  []domain.Record `json:"records"`
}

// archiveDocument reads a ColonyArchive with its records left raw so one bad
// element does not fail the restore.
type archiveDocument struct {
	ColonyID string          `json:"colony_id"`
	Records  json.RawMessage `json:"records"`
}

// ArchiveKey returns the blob key for a colony snapshot taken at t.
func ArchiveKey(colonyID string, t time.Time) string {
	return fmt.Sprintf("colonies/%s/%s.json", colonyID, t.UTC().Format("20060102T150405.000000000Z"))
}

// ArchiveColony writes a point-in-time snapshot of the colony's orders to the
// archive store.
func (s *Service) ArchiveColony(ctx context.Context, id string) (blob.Info, error) {
	var info blob.Info
	err := s.run(ctx, "archive_colony", func() error {
		if s.archive == nil {
			return ErrNoArchive
		}
		colony, ok := s.Colony(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrColonyNotOpen, id)
		}
		doc := ColonyArchive{ColonyID: id, SavedAt: s.clock.Now().UTC(), Records: colony.Records(s.registry)}
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode archive: %w", err)
		}
		info, err = s.archive.Put(ctx, ArchiveKey(id, doc.SavedAt), bytes.NewReader(raw), blob.PutOptions{
			ContentType: archiveContentType,
			Metadata:    map[string]string{"colony": id},
		})
		return err
	})
	return info, err
}

// ListArchives returns the snapshots stored for a colony, oldest first.
func (s *Service) ListArchives(ctx context.Context, colonyID string) ([]blob.Info, error) {
	var infos []blob.Info
	err := s.run(ctx, "list_archives", func() error {
		if s.archive == nil {
			return ErrNoArchive
		}
		if err := checkColonyID(colonyID); err != nil {
			return err
		}
		var err error
		infos, err = s.archive.List(ctx, fmt.Sprintf("colonies/%s/", colonyID))
		return err
	})
	return infos, err
}

// RestoreArchive saves the archived records as the colony's current state and
// reloads them. An open colony keeps its roster; its orders are replaced.
func (s *Service) RestoreArchive(ctx context.Context, key string) (*Colony, LoadReport, error) {
	var (
		colony *Colony
		report LoadReport
	)
	err := s.run(ctx, "restore_archive", func() error {
		if s.archive == nil {
			return ErrNoArchive
		}
		_, rc, err := s.archive.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read archive %s: %w", key, err)
		}
		defer func() { _ = rc.Close() }()
		var doc archiveDocument
		if err := json.NewDecoder(rc).Decode(&doc); err != nil {
			return fmt.Errorf("decode archive %s: %w", key, err)
		}
		records, err := domain.UnmarshalRecords(doc.Records)
		if err != nil {
			return fmt.Errorf("decode archive %s: %w", key, err)
		}
		if err := checkColonyID(doc.ColonyID); err != nil {
			return fmt.Errorf("archive %s: %w", key, err)
		}
		if err := s.store.Save(ctx, doc.ColonyID, records); err != nil {
			return fmt.Errorf("save colony %s: %w", doc.ColonyID, err)
		}
		s.registry.Seal()
		s.mu.Lock()
		defer s.mu.Unlock()
		var ok bool
		colony, ok = s.colonies[doc.ColonyID]
		if !ok {
			colony = NewColony(doc.ColonyID)
			s.colonies[doc.ColonyID] = colony
		}
		report = s.loader().loadInto(colony, records)
		return nil
	})
	if err != nil {
		return nil, LoadReport{}, err
	}
	return colony, report, nil
}

package core

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"colonywork/internal/blob"
	"colonywork/plugins/build"
)

func TestArchiveAndRestoreColony(t *testing.T) {
	ctx := context.Background()
	archive := blob.NewMemory()
	clk := &stepClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := newBuildService(t, WithArchive(archive), WithClock(clk))
	worker := builder(2)
	colony, _, err := svc.OpenColony(ctx, "north", worker)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	order := build.NewBuildOrder("hut", 2, build.Location{X: 3, Y: 4, Z: 5})
	_, _ = colony.AddOrder(order)
	svc.Tick(ctx)

	info, err := svc.ArchiveColony(ctx, "north")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if info.ContentType != "application/json" || info.Metadata["colony"] != "north" {
		t.Fatalf("unexpected archive info %+v", info)
	}
	listed, err := svc.ListArchives(ctx, "north")
	if err != nil || len(listed) != 1 || listed[0].Key != info.Key {
		t.Fatalf("list archives: %v %+v", err, listed)
	}

	if _, err := colony.CancelOrder(order.ID()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	restored, report, err := svc.RestoreArchive(ctx, info.Key)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored != colony {
		t.Fatalf("restore must reuse the open colony and its roster")
	}
	if report.Loaded != 1 || report.Released != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	got, ok := restored.Order(order.ID())
	if !ok || !got.IsClaimedBy(worker) {
		t.Fatalf("archived order and claim not restored")
	}
	if recs, _ := svc.Store().Load(ctx, "north"); len(recs) != 1 {
		t.Fatalf("restore must persist the archived records, got %v", recs)
	}
}

func TestRestoreArchiveOpensClosedColony(t *testing.T) {
	ctx := context.Background()
	archive := blob.NewMemory()
	payload := `{"colony_id":"west","saved_at":"2024-01-01T00:00:00Z","records":[` +
		`{"type":"removal","id":"7c9e6679-7425-40de-944b-e07fc1f90ae7","structure":"hut","x":1,"y":2,"z":3},` +
		`{"type":"mystery","id":"1b4e28ba-2fa1-11d2-883f-0016d3cca427"}]}`
	if _, err := archive.Put(ctx, "colonies/west/manual.json", bytes.NewBufferString(payload), blob.PutOptions{}); err != nil {
		t.Fatalf("seed archive: %v", err)
	}
	svc := newBuildService(t, WithArchive(archive))
	colony, report, err := svc.RestoreArchive(ctx, "colonies/west/manual.json")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if colony.ID() != "west" || report.Loaded != 1 || len(report.Dropped) != 1 || report.Dropped[0].Reason != DropUnknownKind {
		t.Fatalf("unexpected restore result %+v", report)
	}
	if _, ok := svc.Colony("west"); !ok {
		t.Fatalf("restored colony not open")
	}
}

func TestArchiveErrors(t *testing.T) {
	ctx := context.Background()
	svc := newBuildService(t)
	if _, err := svc.ArchiveColony(ctx, "north"); !errors.Is(err, ErrNoArchive) {
		t.Fatalf("expected ErrNoArchive, got %v", err)
	}
	if _, _, err := svc.RestoreArchive(ctx, "k"); !errors.Is(err, ErrNoArchive) {
		t.Fatalf("expected ErrNoArchive, got %v", err)
	}

	archive := blob.NewMemory()
	svc = newBuildService(t, WithArchive(archive))
	if _, err := svc.ArchiveColony(ctx, "north"); !errors.Is(err, ErrColonyNotOpen) {
		t.Fatalf("expected ErrColonyNotOpen, got %v", err)
	}
	if _, _, err := svc.RestoreArchive(ctx, "missing.json"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, _ = archive.Put(ctx, "bad.json", bytes.NewBufferString(`{"records":[]}`), blob.PutOptions{})
	if _, _, err := svc.RestoreArchive(ctx, "bad.json"); !errors.Is(err, ErrInvalidColonyID) {
		t.Fatalf("expected missing colony id error, got %v", err)
	}
	_, _ = archive.Put(ctx, "nested.json", bytes.NewBufferString(`{"colony_id":"a/b","records":[]}`), blob.PutOptions{})
	if _, _, err := svc.RestoreArchive(ctx, "nested.json"); !errors.Is(err, ErrInvalidColonyID) {
		t.Fatalf("expected slash in colony id to be rejected, got %v", err)
	}
	if _, err := svc.ListArchives(ctx, "a/b"); !errors.Is(err, ErrInvalidColonyID) {
		t.Fatalf("listing a nested id must be rejected, got %v", err)
	}
}

func TestArchiveKeyFormat(t *testing.T) {
	key := ArchiveKey("north", time.Date(2024, 5, 1, 12, 30, 0, 5, time.UTC))
	if key != "colonies/north/20240501T123000.000000005Z.json" {
		t.Fatalf("unexpected key %s", key)
	}
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"colonywork/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "colonywork.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	records := []domain.Record{
		{"type": "build", "id": "a", "structure": "hut", "level": 2, "mirrored": true},
		{"type": "removal", "id": "b", "claimedBy": "c"},
	}
	if err := store.Save(ctx, "north", records); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.Path() != path {
		t.Fatalf("unexpected path %s", reopened.Path())
	}
	got, err := reopened.Load(ctx, "north")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0]["id"] != "a" || got[1]["claimedBy"] != "c" {
		t.Fatalf("unexpected records %v", got)
	}
	if lvl, err := got[0].Int("level"); err != nil || lvl != 2 {
		t.Fatalf("level: %d %v", lvl, err)
	}
	if mirrored, _ := got[0].Bool("mirrored"); !mirrored {
		t.Fatalf("expected mirrored flag to survive")
	}
}

func TestStoreUpsertColoniesDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	if got, err := store.Load(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("missing colony: %v %v", got, err)
	}
	_ = store.Save(ctx, "south", []domain.Record{{"type": "removal", "id": "1"}})
	_ = store.Save(ctx, "north", []domain.Record{{"type": "removal", "id": "2"}})
	if err := store.Save(ctx, "south", []domain.Record{{"type": "removal", "id": "3"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, _ := store.Load(ctx, "south")
	if len(got) != 1 || got[0]["id"] != "3" {
		t.Fatalf("expected upserted batch, got %v", got)
	}
	ids, err := store.Colonies(ctx)
	if err != nil {
		t.Fatalf("colonies: %v", err)
	}
	if len(ids) != 2 || ids[0] != "north" || ids[1] != "south" {
		t.Fatalf("unexpected colonies %v", ids)
	}
	if ok, err := store.Delete(ctx, "north"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, _ := store.Delete(ctx, "north"); ok {
		t.Fatalf("expected repeat delete to report missing")
	}
}

func TestStoreRejectsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, err := store.DB().Exec(`INSERT INTO work_orders(colony_id,payload) VALUES(?,?)`, "bad", []byte("{")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(ctx, "bad"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStoreKeepsObjectsAroundNonObjectElements(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(filepath.Join(t.TempDir(), "db.sqlite"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	payload := []byte(`[{"type":"build","id":"a"},"garbage",{"type":"removal","id":"b"}]`)
	if _, err := store.DB().Exec(`INSERT INTO work_orders(colony_id,payload) VALUES(?,?)`, "mixed", payload); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := store.Load(ctx, "mixed")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 3 || got[0]["id"] != "a" || got[1] != nil || got[2]["id"] != "b" {
		t.Fatalf("unexpected records %v", got)
	}
}

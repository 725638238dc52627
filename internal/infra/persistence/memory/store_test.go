package memory

import (
	"context"
	"testing"

	"colonywork/pkg/domain"
)

func TestStoreSaveLoadReplace(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	if recs, err := s.Load(ctx, "north"); err != nil || recs != nil {
		t.Fatalf("expected empty load, got %v %v", recs, err)
	}
	first := []domain.Record{{"type": "build", "id": "1", "level": 2}, {"type": "removal", "id": "2"}}
	if err := s.Save(ctx, "north", first); err != nil {
		t.Fatalf("save: %v", err)
	}
	first[0]["level"] = 5
	recs, err := s.Load(ctx, "north")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 2 || recs[0]["id"] != "1" || recs[1]["id"] != "2" {
		t.Fatalf("unexpected records %v", recs)
	}
	if lvl, _ := recs[0].Int("level"); lvl != 2 {
		t.Fatalf("saved record aliased caller map, level=%d", lvl)
	}
	if err := s.Save(ctx, "north", nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	recs, _ = s.Load(ctx, "north")
	if len(recs) != 0 {
		t.Fatalf("expected replacement with empty batch, got %v", recs)
	}
}

func TestStoreColoniesAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for _, id := range []string{"south", "north"} {
		if err := s.Save(ctx, id, []domain.Record{{"type": "removal", "id": id}}); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	ids, _ := s.Colonies(ctx)
	if len(ids) != 2 || ids[0] != "north" || ids[1] != "south" {
		t.Fatalf("unexpected colonies %v", ids)
	}
	if ok, _ := s.Delete(ctx, "north"); !ok {
		t.Fatalf("expected north to exist")
	}
	if ok, _ := s.Delete(ctx, "north"); ok {
		t.Fatalf("expected second delete to report missing")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"colonywork/internal/config"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	fsStore, err := Open(ctx, config.Archive{Driver: "fs", FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	if fsStore.Driver() != DriverFilesystem {
		t.Fatalf("expected fs driver, got %s", fsStore.Driver())
	}
	mem, err := Open(ctx, config.Archive{Driver: "memory"})
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	if mem.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", mem.Driver())
	}
	if _, err := Open(ctx, config.Archive{Driver: "tape"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, config.Archive{Driver: "s3"}); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

// Every backend must honour the same create-only and not-found contract.
func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	stores := map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
		"s3":     NewMockS3ForTests(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			payload := []byte(`{"colony":"north"}`)
			if _, err := store.Put(ctx, "colonies/north/1.json", bytes.NewReader(payload), PutOptions{ContentType: "application/json"}); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Put(ctx, "colonies/north/1.json", bytes.NewReader(payload), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
			_, rc, err := store.Get(ctx, "colonies/north/1.json")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			got, _ := io.ReadAll(rc)
			_ = rc.Close()
			if !bytes.Equal(got, payload) {
				t.Fatalf("unexpected body %q", got)
			}
			if _, _, err := store.Get(ctx, "colonies/north/missing.json"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if _, err := store.Put(ctx, "colonies/south/1.json", bytes.NewReader(payload), PutOptions{}); err != nil {
				t.Fatalf("put south: %v", err)
			}
			infos, err := store.List(ctx, "colonies/north/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 1 || infos[0].Key != "colonies/north/1.json" {
				t.Fatalf("unexpected list %+v", infos)
			}
			existed, err := store.Delete(ctx, "colonies/north/1.json")
			if err != nil || !existed {
				t.Fatalf("delete: existed=%v err=%v", existed, err)
			}
			existed, err = store.Delete(ctx, "colonies/north/1.json")
			if err != nil || existed {
				t.Fatalf("second delete: existed=%v err=%v", existed, err)
			}
		})
	}
}

package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"colonywork/internal/config"
	"colonywork/internal/core"
	"colonywork/plugins/build"
)

const memoryConfig = `storage:
  driver: memory
archive:
  driver: memory
metrics:
  namespace: cwtest
log:
  level: warn
  format: text
colony:
  id: hill
  citizens:
    - name: Ada
      job: builder
      level: 3
    - name: Bo
      job: farmer
      level: 1
  orders:
    - type: build
      structure: hut
      level: 1
      x: 4
      y: 64
      z: -2
    - type: removal
      structure: shed
      x: 0
      y: 64
      z: 0
    - type: mystery
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colonywork.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestCLIRunsColonyFromConfig(t *testing.T) {
	path := writeConfig(t, memoryConfig)
	var stdout, stderr bytes.Buffer
	code := cli([]string{"-config", path, "-ticks", "2", "-archive"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "colony hill: loaded=0 dropped=0 released=0 seeded=2 claims=1") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if !strings.Contains(out, "claimed_by=Ada") {
		t.Fatalf("expected Ada to hold an order:\n%s", out)
	}
	if !strings.Contains(out, "archived to colonies/hill/") {
		t.Fatalf("expected archive key in output:\n%s", out)
	}
	if !strings.Contains(stderr.String(), "skipping configured work order") {
		t.Fatalf("expected unknown configured kind to be logged, got %q", stderr.String())
	}
}

func TestCLIPrintsMetrics(t *testing.T) {
	path := writeConfig(t, memoryConfig)
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-config", path, "-metrics"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr.String())
	}
	out := stdout.String()
	for _, want := range []string{
		"cwtest_workorders_claimed_total",
		"cwtest_operation_duration_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in metrics output:\n%s", want, out)
		}
	}
}

func TestCLIRejectsBadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-nope"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	if code := cli([]string{"-ticks", "-1"}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestCLIReportsConfigErrors(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: tape\n")
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-config", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "unknown storage driver") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestCLIRestoresSavedOrdersFromSQLite(t *testing.T) {
	path, _ := sqliteConfig(t)

	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-config", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("first run exit code = %d, stderr = %s", code, stderr.String())
	}
	stdout.Reset()
	if code := cli([]string{"-config", path, "-ticks", "0"}, &stdout, &stderr); code != 0 {
		t.Fatalf("second run exit code = %d, stderr = %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "loaded=2 dropped=0 released=0 seeded=0") {
		t.Fatalf("expected saved orders to be restored:\n%s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "claimed_by=Ada") {
		t.Fatalf("expected restored claim to stay with Ada:\n%s", stdout.String())
	}
}

func TestRosterDerivesStableIDs(t *testing.T) {
	colony := config.Colony{ID: "hill", Citizens: []config.Citizen{{Name: "Ada", Job: "builder", Level: 2, Busy: true}}}
	first, err := rosterFromConfig(colony)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	second, err := rosterFromConfig(colony)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if first[0].ID() != second[0].ID() {
		t.Fatalf("derived ids differ: %s vs %s", first[0].ID(), second[0].ID())
	}
	if first[0].Idle() {
		t.Fatalf("busy citizen reported idle")
	}

	fixed := uuid.New()
	colony.Citizens[0].ID = fixed.String()
	roster, err := rosterFromConfig(colony)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if roster[0].ID() != fixed {
		t.Fatalf("id = %s, want %s", roster[0].ID(), fixed)
	}

	colony.Citizens[0].ID = "not-a-uuid"
	if _, err := rosterFromConfig(colony); err == nil {
		t.Fatalf("expected invalid id to fail")
	}
}

func TestSeedOrdersAssignsMissingIDs(t *testing.T) {
	svc := core.NewInMemoryService()
	if _, err := svc.InstallPlugin(build.New()); err != nil {
		t.Fatalf("install: %v", err)
	}
	colony := core.NewColony("hill")
	kept := uuid.New()
	seeded := seedOrders(svc.Registry(), colony, []map[string]any{
		{"type": "removal", "structure": "shed", "x": 1, "y": 2, "z": 3},
		{"type": "removal", "id": kept.String(), "structure": "barn", "x": 1, "y": 2, "z": 3},
		{"type": "build", "structure": "hut", "level": 9, "x": 0, "y": 0, "z": 0},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if seeded != 2 {
		t.Fatalf("seeded = %d, want 2", seeded)
	}
	if _, ok := colony.Order(kept); !ok {
		t.Fatalf("configured id %s not kept", kept)
	}
}

package domain_test

import (
	"errors"
	"strings"
	"testing"

	"colonywork/pkg/domain"
)

func TestRegistryRejectsDuplicateKind(t *testing.T) {
	reg := domain.NewRegistry()
	if err := reg.Register(kindNote, newNoteOrder); err != nil {
		t.Fatalf("register note: %v", err)
	}
	for name, ctor := range map[string]domain.Constructor{
		"same variant":  newNoteOrder,
		"other variant": newCrateOrder,
	} {
		err := reg.Register(kindNote, ctor)
		var cfgErr domain.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
		if cfgErr.Kind != kindNote || !strings.Contains(cfgErr.Reason, "duplicate") {
			t.Fatalf("%s: unexpected error %+v", name, cfgErr)
		}
	}
}

func TestRegistryRejectsMalformedEntries(t *testing.T) {
	cases := []struct {
		name   string
		kind   domain.Kind
		ctor   domain.Constructor
		reason string
	}{
		{name: "empty kind", kind: "", ctor: newNoteOrder, reason: "empty kind"},
		{name: "nil constructor", kind: kindNote, ctor: nil, reason: "missing constructor"},
		{name: "nil order", kind: kindNote, ctor: func() domain.WorkOrder { return nil }, reason: "returned nil"},
		{name: "kind mismatch", kind: "memo", ctor: newNoteOrder, reason: `builds kind "note"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reg := domain.NewRegistry()
			err := reg.Register(tc.kind, tc.ctor)
			var cfgErr domain.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(cfgErr.Reason, tc.reason) {
				t.Fatalf("expected reason containing %q, got %q", tc.reason, cfgErr.Reason)
			}
			if len(reg.Kinds()) != 0 {
				t.Fatalf("failed registration must not leave entries: %v", reg.Kinds())
			}
		})
	}
}

func TestRegistryRejectsVariantUnderSecondKind(t *testing.T) {
	reg := domain.NewRegistry()
	reg.MustRegister("first", func() domain.WorkOrder { return &taggedOrder{kind: "first"} })
	err := reg.Register("second", func() domain.WorkOrder { return &taggedOrder{kind: "second"} })
	var cfgErr domain.ConfigurationError
	if !errors.As(err, &cfgErr) || !strings.Contains(cfgErr.Reason, `already registered as "first"`) {
		t.Fatalf("expected second kind for the same variant to fail, got %v", err)
	}
	if _, ok := reg.ResolveConstructor("second"); ok {
		t.Fatalf("rejected kind must not resolve")
	}
}

type taggedOrder struct {
	domain.Base
	kind domain.Kind
}

func (o *taggedOrder) Kind() domain.Kind { return o.kind }

func TestRegistrySealBlocksRegistration(t *testing.T) {
	reg := domain.NewRegistry()
	reg.Seal()
	if !reg.Sealed() {
		t.Fatalf("expected sealed registry")
	}
	err := reg.Register(kindNote, newNoteOrder)
	var cfgErr domain.ConfigurationError
	if !errors.As(err, &cfgErr) || !strings.Contains(cfgErr.Reason, "sealed") {
		t.Fatalf("expected sealed configuration error, got %v", err)
	}
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	reg := domain.NewRegistry()
	reg.MustRegister(kindNote, newNoteOrder)
	defer func() {
		r := recover()
		if _, ok := r.(domain.ConfigurationError); !ok {
			t.Fatalf("expected ConfigurationError panic, got %v", r)
		}
	}()
	reg.MustRegister(kindNote, newNoteOrder)
}

func TestRegistryBijection(t *testing.T) {
	reg := newTestRegistry()
	kinds := reg.Kinds()
	if len(kinds) != 2 || kinds[0] != kindNote || kinds[1] != kindCrate {
		t.Fatalf("unexpected kinds: %v", kinds)
	}
	seen := make(map[domain.Kind]bool)
	for _, kind := range kinds {
		ctor, ok := reg.ResolveConstructor(kind)
		if !ok {
			t.Fatalf("kind %q did not resolve", kind)
		}
		order := ctor()
		back, ok := reg.ResolveKind(order)
		if !ok || back != kind {
			t.Fatalf("kind %q resolved back to %q", kind, back)
		}
		if seen[back] {
			t.Fatalf("two kinds resolved to the same variant")
		}
		seen[back] = true
	}
}

func TestRegistryResolveMisses(t *testing.T) {
	reg := newTestRegistry()
	if _, ok := reg.ResolveConstructor("unknown"); ok {
		t.Fatalf("expected unknown kind to miss")
	}
	if _, ok := reg.ResolveKind(&strayOrder{}); ok {
		t.Fatalf("expected unregistered variant to miss")
	}
	if _, ok := reg.ResolveKind(nil); ok {
		t.Fatalf("expected nil order to miss")
	}
}

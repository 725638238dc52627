package domain

import "fmt"

// Constructor builds a default instance of a work order variant with a fresh id.
type Constructor func() WorkOrder

type registryEntry struct {
	ctor    Constructor
	variant string
}

// Registry maps persisted kinds to variant constructors and back. It is
// populated during startup, sealed, and only read afterwards; it performs no
// locking.
type Registry struct {
	entries map[Kind]registryEntry
	kinds   map[string]Kind
	order   []Kind
	sealed  bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Kind]registryEntry),
		kinds:   make(map[string]Kind),
	}
}

// Register maps kind to ctor. The constructor is invoked once to confirm it
// yields a variant reporting the same kind.
func (r *Registry) Register(kind Kind, ctor Constructor) error {
	if r.sealed {
		return ConfigurationError{Kind: kind, Reason: "registry is sealed"}
	}
	if kind == "" {
		return ConfigurationError{Kind: kind, Reason: "empty kind"}
	}
	if _, exists := r.entries[kind]; exists {
		return ConfigurationError{Kind: kind, Reason: "duplicate kind"}
	}
	if ctor == nil {
		return ConfigurationError{Kind: kind, Reason: "missing constructor"}
	}
	sample := ctor()
	if sample == nil {
		return ConfigurationError{Kind: kind, Reason: "constructor returned nil"}
	}
	if sample.Kind() != kind {
		return ConfigurationError{Kind: kind, Reason: fmt.Sprintf("constructor builds kind %q", sample.Kind())}
	}
	variant := variantName(sample)
	if other, exists := r.kinds[variant]; exists {
		return ConfigurationError{Kind: kind, Reason: fmt.Sprintf("%s already registered as %q", variant, other)}
	}
	r.entries[kind] = registryEntry{ctor: ctor, variant: variant}
	r.kinds[variant] = kind
	r.order = append(r.order, kind)
	return nil
}

// MustRegister is Register for package initialisation; it panics on error.
func (r *Registry) MustRegister(kind Kind, ctor Constructor) {
	if err := r.Register(kind, ctor); err != nil {
		panic(err)
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed }

// ResolveConstructor returns the constructor registered for kind.
func (r *Registry) ResolveConstructor(kind Kind) (Constructor, bool) {
	entry, ok := r.entries[kind]
	if !ok {
		return nil, false
	}
	return entry.ctor, true
}

// ResolveKind returns the registered kind for the variant of order.
func (r *Registry) ResolveKind(order WorkOrder) (Kind, bool) {
	if order == nil {
		return "", false
	}
	kind, ok := r.kinds[variantName(order)]
	if !ok || kind != order.Kind() {
		return "", false
	}
	return kind, true
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

func variantName(order WorkOrder) string {
	return fmt.Sprintf("%T", order)
}

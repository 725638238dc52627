package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"colonywork/internal/blob"
	"colonywork/internal/infra/persistence/memory"
	"colonywork/pkg/domain"
)

var (
	// ErrColonyNotOpen is returned for operations on a colony that is not loaded.
	ErrColonyNotOpen = errors.New("colony not open")
	// ErrInvalidColonyID is returned for an empty colony id or one containing
	// a slash. Colony ids become a single archive key segment.
	ErrInvalidColonyID = errors.New("invalid colony id")
)

func checkColonyID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidColonyID)
	}
	if strings.Contains(id, "/") {
		return fmt.Errorf("%w: %q contains '/'", ErrInvalidColonyID, id)
	}
	return nil
}

// Service hosts colonies, restores their work orders through the kind
// registry and persists them back at save boundaries.
type Service struct {
	store    domain.RecordStore
	registry *domain.Registry
	archive  blob.Store
	logger   Logger
	metrics  MetricsRecorder
	clock    Clock

	mu       sync.RWMutex
	colonies map[string]*Colony
	plugins  map[string]PluginMetadata
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timings and archive keys.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithArchive enables ArchiveColony and RestoreArchive against store.
func WithArchive(store blob.Store) Option {
	return func(s *Service) { s.archive = store }
}

// WithRegistry supplies a prepared kind registry instead of an empty one.
func WithRegistry(registry *domain.Registry) Option {
	return func(s *Service) {
		if registry != nil {
			s.registry = registry
		}
	}
}

// NewService constructs a service backed by the supplied record store.
func NewService(store domain.RecordStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: domain.NewRegistry(),
		logger:   noopLogger{},
		metrics:  noopMetricsRecorder{},
		clock:    systemClock{},
		colonies: make(map[string]*Colony),
		plugins:  make(map[string]PluginMetadata),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over an in-memory record store.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Registry returns the work order kind registry.
func (s *Service) Registry() *domain.Registry { return s.registry }

// Store returns the underlying record store.
func (s *Service) Store() domain.RecordStore { return s.store }

func (s *Service) run(ctx context.Context, op string, fn func() error) error {
	start := s.clock.Now()
	err := fn()
	s.metrics.Observe(ctx, op, err == nil, s.clock.Now().Sub(start))
	if err != nil {
		s.logger.Error("operation failed", "operation", op, "error", err)
	}
	return err
}

// OpenColony loads a colony's saved orders into a new in-memory colony whose
// roster is citizens; restored claims are bound to that roster. The first call
// seals the registry. Dropped records are reported, not returned as errors;
// only store failures fail the call.
func (s *Service) OpenColony(ctx context.Context, id string, citizens ...*Citizen) (*Colony, LoadReport, error) {
	var (
		colony *Colony
		report LoadReport
	)
	err := s.run(ctx, "open_colony", func() error {
		if err := checkColonyID(id); err != nil {
			return err
		}
		s.registry.Seal()
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, open := s.colonies[id]; open {
			return fmt.Errorf("colony %s already open", id)
		}
		records, err := s.store.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("load colony %s: %w", id, err)
		}
		colony = NewColony(id)
		for _, citizen := range citizens {
			if err := colony.AddWorker(citizen); err != nil {
				return err
			}
		}
		report = s.loader().loadInto(colony, records)
		s.colonies[id] = colony
		return nil
	})
	if err != nil {
		return nil, LoadReport{}, err
	}
	s.logger.Info("colony opened", "colony", id, "loaded", report.Loaded, "dropped", len(report.Dropped), "released", report.Released)
	return colony, report, nil
}

// Colony returns an open colony.
func (s *Service) Colony(id string) (*Colony, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	colony, ok := s.colonies[id]
	return colony, ok
}

// Colonies lists open colony ids in lexical order.
func (s *Service) Colonies() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.colonies))
	for id := range s.colonies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SaveColony persists the colony's orders in collection order.
func (s *Service) SaveColony(ctx context.Context, id string) error {
	return s.run(ctx, "save_colony", func() error {
		colony, ok := s.Colony(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrColonyNotOpen, id)
		}
		return s.store.Save(ctx, id, colony.Records(s.registry))
	})
}

// SaveAll persists every open colony.
func (s *Service) SaveAll(ctx context.Context) error {
	for _, id := range s.Colonies() {
		if err := s.SaveColony(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// CloseColony forgets an open colony without saving it.
func (s *Service) CloseColony(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.colonies[id]
	delete(s.colonies, id)
	return ok
}

// DropColony closes the colony and deletes its saved records. All of its
// orders are discarded.
func (s *Service) DropColony(ctx context.Context, id string) (bool, error) {
	var existed bool
	err := s.run(ctx, "drop_colony", func() error {
		open := s.CloseColony(id)
		stored, err := s.store.Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete colony %s: %w", id, err)
		}
		existed = open || stored
		return nil
	})
	return existed, err
}

// Tick advances every open colony once, in colony id order, and returns the
// claims made.
func (s *Service) Tick(ctx context.Context) []Claim {
	var claims []Claim
	_ = s.run(ctx, "tick", func() error {
		for _, id := range s.Colonies() {
			colony, ok := s.Colony(id)
			if !ok {
				continue
			}
			for _, claim := range colony.Tick() {
				s.metrics.WorkOrderClaimed(claim.Kind)
				s.logger.Debug("work order claimed", "colony", id, "kind", claim.Kind, "order", claim.OrderID, "worker", claim.WorkerID)
				claims = append(claims, claim)
			}
		}
		return nil
	})
	return claims
}

// Close releases the record store.
func (s *Service) Close() error {
	return s.store.Close()
}

func sortPlugins(plugins []PluginMetadata) {
	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
}

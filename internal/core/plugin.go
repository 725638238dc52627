package core

import (
	"fmt"

	"colonywork/pkg/domain"
	"colonywork/pkg/pluginapi"
)

var _ pluginapi.Registry = (*PluginRegistry)(nil)

type kindContribution struct {
	kind domain.Kind
	ctor domain.Constructor
}

// PluginRegistry accumulates plugin contributions during registration.
type PluginRegistry struct {
	kinds []kindContribution
	seen  map[domain.Kind]struct{}
}

// NewPluginRegistry constructs a plugin registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{seen: make(map[domain.Kind]struct{})}
}

// RegisterKind records a work order kind contributed by the plugin.
func (r *PluginRegistry) RegisterKind(kind domain.Kind, ctor domain.Constructor) error {
	if kind == "" {
		return domain.ConfigurationError{Kind: kind, Reason: "empty kind"}
	}
	if ctor == nil {
		return domain.ConfigurationError{Kind: kind, Reason: "missing constructor"}
	}
	if _, dup := r.seen[kind]; dup {
		return domain.ConfigurationError{Kind: kind, Reason: "duplicate kind"}
	}
	r.seen[kind] = struct{}{}
	r.kinds = append(r.kinds, kindContribution{kind: kind, ctor: ctor})
	return nil
}

// Kinds returns the contributed kinds in registration order.
func (r *PluginRegistry) Kinds() []domain.Kind {
	out := make([]domain.Kind, len(r.kinds))
	for i, k := range r.kinds {
		out[i] = k.kind
	}
	return out
}

// PluginMetadata describes an installed plugin.
type PluginMetadata struct {
	Name    string
	Version string
	Kinds   []domain.Kind
}

// InstallPlugin registers a plugin's work order kinds with the service
// registry. It fails once the registry is sealed by the first colony load.
func (s *Service) InstallPlugin(plugin pluginapi.Plugin) (PluginMetadata, error) {
	if plugin == nil {
		return PluginMetadata{}, fmt.Errorf("plugin cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plugins[plugin.Name()]; ok {
		return PluginMetadata{}, fmt.Errorf("plugin %s already registered", plugin.Name())
	}
	if s.registry.Sealed() {
		return PluginMetadata{}, fmt.Errorf("plugin %s: work order registry is sealed", plugin.Name())
	}

	registry := NewPluginRegistry()
	if err := plugin.Register(registry); err != nil {
		return PluginMetadata{}, fmt.Errorf("plugin %s: %w", plugin.Name(), err)
	}
	for _, k := range registry.kinds {
		if _, exists := s.registry.ResolveConstructor(k.kind); exists {
			return PluginMetadata{}, fmt.Errorf("plugin %s: %w", plugin.Name(),
				domain.ConfigurationError{Kind: k.kind, Reason: "duplicate kind"})
		}
	}
	for _, k := range registry.kinds {
		if err := s.registry.Register(k.kind, k.ctor); err != nil {
			return PluginMetadata{}, fmt.Errorf("plugin %s: %w", plugin.Name(), err)
		}
	}

	meta := PluginMetadata{
		Name:    plugin.Name(),
		Version: plugin.Version(),
		Kinds:   registry.Kinds(),
	}
	s.plugins[plugin.Name()] = meta
	s.logger.Info("plugin installed", "plugin", meta.Name, "version", meta.Version, "kinds", len(meta.Kinds))
	return meta, nil
}

// RegisteredPlugins returns metadata describing installed plugins, sorted by name.
func (s *Service) RegisteredPlugins() []PluginMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PluginMetadata, 0, len(s.plugins))
	for _, meta := range s.plugins {
		out = append(out, meta)
	}
	sortPlugins(out)
	return out
}

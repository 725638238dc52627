// Package pluginapi is the surface plugins use to contribute work order kinds.
package pluginapi

import "colonywork/pkg/domain"

// Registry collects the kinds a plugin contributes during installation.
type Registry interface {
	RegisterKind(kind domain.Kind, ctor domain.Constructor) error
}

// Plugin is a bundle of work order kinds installed into the host service.
type Plugin interface {
	Name() string
	Version() string
	Register(Registry) error
}

// Version is the plugin API version.
const Version = "v1"

// VersionProvider reports the plugin API version a host speaks.
type VersionProvider interface {
	APIVersion() string
}

type defaultVersionProvider struct{}

func (defaultVersionProvider) APIVersion() string { return Version }

// GetVersionProvider returns the provider for the compiled-in API version.
func GetVersionProvider() VersionProvider { return defaultVersionProvider{} }

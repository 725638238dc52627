// Package build contributes construction work orders: building or upgrading
// a structure, and removing one.
package build

import (
	"colonywork/pkg/domain"
	"colonywork/pkg/pluginapi"
)

// Kinds contributed by this plugin.
const (
	KindBuild   domain.Kind = "build"
	KindRemoval domain.Kind = "removal"
)

// JobBuilder is the job name of citizens able to take construction orders.
const JobBuilder = "builder"

// Plugin registers the construction work order kinds.
type Plugin struct{}

// New constructs a build plugin instance.
func New() Plugin {
	return Plugin{}
}

// Name returns the plugin identifier.
func (Plugin) Name() string { return "build" }

// Version returns the plugin semantic version.
func (Plugin) Version() string { return "0.1.0" }

// Register wires the build and removal kinds.
func (Plugin) Register(registry pluginapi.Registry) error {
	if err := registry.RegisterKind(KindBuild, func() domain.WorkOrder { return NewBuildOrder("", 1, Location{}) }); err != nil {
		return err
	}
	return registry.RegisterKind(KindRemoval, func() domain.WorkOrder { return NewRemovalOrder("", Location{}) })
}

// firstIdleBuilder returns the first idle builder in colony order whose skill
// level is at least minLevel.
func firstIdleBuilder(colony domain.Colony, minLevel int) domain.Worker {
	if colony == nil {
		return nil
	}
	for _, w := range colony.Workers() {
		if w == nil || w.Job() != JobBuilder || !w.Idle() {
			continue
		}
		if w.SkillLevel() < minLevel {
			continue
		}
		return w
	}
	return nil
}

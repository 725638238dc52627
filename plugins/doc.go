// Package plugins hosts work order plugin subpackages. Each subpackage
// implements pluginapi.Plugin and registers its kinds with the host during
// startup, before the first colony is loaded.
//
// Plugin code may import colonywork/pkg/domain and colonywork/pkg/pluginapi
// only; architecture_test.go enforces this.
package plugins

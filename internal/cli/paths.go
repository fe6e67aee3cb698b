package cli

import "github.com/fastertools/ftl-cli/internal/manifest"

// resolveWasmPaths maps each locally-built component to its WASM artifact
// path, taken verbatim from the manifest's `wasm` attribute (spec.md §4.1:
// "resolved from the `wasm` attribute relative to the project root").
// Registry-sourced components are omitted; the transpiler ignores them.
func resolveWasmPaths(m *manifest.Manifest) map[string]string {
	paths := make(map[string]string)
	for name, c := range m.Component {
		if c.IsRegistry() {
			continue
		}
		paths[name] = c.Wasm
	}
	return paths
}

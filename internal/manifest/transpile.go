package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// gatewayComponentName is the name under which the JWT gateway (C12) is
// injected into the runtime manifest when access_control = "private".
const gatewayComponentName = "mcp-gateway"

// Transpile is a pure function of (manifest, resolved-path map, project
// root): given the same inputs it produces byte-identical spin.toml text
// (spec.md §8 property 1). resolvedPaths maps a component's manifest name
// to its built WASM file, relative to projectRoot; it is required for
// every locally built component and ignored for registry-sourced ones.
func Transpile(m *Manifest, resolvedPaths map[string]string, projectRoot string) (string, error) {
	names := make([]string, 0, len(m.Component))
	for name := range m.Component {
		names = append(names, name)
	}
	sort.Strings(names)

	private := m.Project.AccessControl == AccessPrivate

	var b strings.Builder
	fmt.Fprintf(&b, "spin_manifest_version = 2\n\n")
	fmt.Fprintf(&b, "[application]\n")
	fmt.Fprintf(&b, "name = %q\n", m.Project.Name)
	if m.Project.Version != "" {
		fmt.Fprintf(&b, "version = %q\n", m.Project.Version)
	}
	b.WriteString("\n")

	if private {
		fmt.Fprintf(&b, "[[trigger.http]]\n")
		fmt.Fprintf(&b, "route = \"/...\"\n")
		fmt.Fprintf(&b, "component = %q\n\n", gatewayComponentName)
	}

	for _, name := range names {
		comp := m.Component[name]

		if !private {
			fmt.Fprintf(&b, "[[trigger.http]]\n")
			fmt.Fprintf(&b, "route = \"/%s/...\"\n", name)
			fmt.Fprintf(&b, "component = %q\n\n", name)
		}

		fmt.Fprintf(&b, "[component.%s]\n", name)
		if comp.IsRegistry() {
			fmt.Fprintf(&b, "source = { registry = %q, package = %q, version = %q }\n",
				comp.Source.Registry, comp.Source.Package, comp.Source.Version)
		} else {
			source, ok := resolvedPaths[name]
			if !ok {
				return "", fmt.Errorf("no resolved wasm path for component %q", name)
			}
			fmt.Fprintf(&b, "source = %q\n", source)
		}
		if len(comp.AllowedOutboundHosts) > 0 {
			hosts := make([]string, len(comp.AllowedOutboundHosts))
			for i, h := range comp.AllowedOutboundHosts {
				hosts[i] = fmt.Sprintf("%q", h)
			}
			fmt.Fprintf(&b, "allowed_outbound_hosts = [%s]\n", strings.Join(hosts, ", "))
		}
		b.WriteString("\n")
	}

	if private {
		b.WriteString(gatewayComponentBlock(m, names))
	}

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

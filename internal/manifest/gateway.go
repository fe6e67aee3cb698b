package manifest

import (
	"fmt"
	"strings"
)

// gatewayWasmSource is the registry location of the prebuilt JWT gateway
// component (C12). It is always registry-sourced: the gateway is FTL's
// own component, never something the user builds.
const gatewayWasmSource = "ghcr.io/fastertools/mcp-authorizer:latest"

// gatewayComponentBlock renders the `[component.mcp-gateway]` table and its
// upstream routing variables, wiring every user component behind it. This
// mirrors the teacher's gateway-injection pattern for access_control =
// "private": the gateway terminates inbound auth and forwards to each
// component's internal (non-routed) path.
func gatewayComponentBlock(m *Manifest, names []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[component.%s]\n", gatewayComponentName)
	fmt.Fprintf(&b, "source = %q\n", gatewayWasmSource)
	fmt.Fprintf(&b, "allowed_outbound_hosts = [\"https://*:443\"]\n\n")

	fmt.Fprintf(&b, "[component.%s.variables]\n", gatewayComponentName)
	fmt.Fprintf(&b, "mcp_provider_type = \"jwt\"\n")
	if m.OAuth != nil {
		fmt.Fprintf(&b, "mcp_jwt_issuer = %q\n", m.OAuth.Issuer)
		if m.OAuth.Audience != "" {
			fmt.Fprintf(&b, "mcp_jwt_audience = %q\n", m.OAuth.Audience)
		}
	}
	upstreams := make([]string, len(names))
	for i, name := range names {
		upstreams[i] = fmt.Sprintf("%q", "/"+name+"/...")
	}
	fmt.Fprintf(&b, "mcp_upstream_routes = [%s]\n\n", strings.Join(upstreams, ", "))

	return b.String()
}

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspileIsDeterministic(t *testing.T) {
	m := &Manifest{
		Project: ProjectSpec{Name: "test-app", Version: "0.1.0"},
		Component: map[string]ComponentSpec{
			"add":  {Path: "add", Wasm: "add/target/wasm32-wasip1/release/add.wasm"},
			"echo": {Path: "echo", Wasm: "echo/target/wasm32-wasip1/release/echo.wasm", AllowedOutboundHosts: []string{"https://*.amazonaws.com"}},
		},
	}
	resolved := map[string]string{
		"add":  "add/target/wasm32-wasip1/release/add.wasm",
		"echo": "echo/target/wasm32-wasip1/release/echo.wasm",
	}

	first, err := Transpile(m, resolved, ".")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Transpile(m, resolved, ".")
		require.NoError(t, err)
		assert.Equal(t, first, again, "Transpile is not deterministic across runs")
	}

	assert.Contains(t, first, `[component.add]`)
	assert.Contains(t, first, `[component.echo]`)
	assert.Contains(t, first, `allowed_outbound_hosts = ["https://*.amazonaws.com"]`)
}

func TestTranspileRegistryComponentPassesThrough(t *testing.T) {
	m := &Manifest{
		Project: ProjectSpec{Name: "test-app"},
		Component: map[string]ComponentSpec{
			"system": {Source: &RegistrySource{Registry: "ghcr.io", Package: "example/system", Version: "latest"}},
		},
	}

	out, err := Transpile(m, nil, ".")
	require.NoError(t, err)
	assert.Contains(t, out, `source = { registry = "ghcr.io", package = "example/system", version = "latest" }`)
}

func TestTranspileMissingResolvedPathFails(t *testing.T) {
	m := &Manifest{
		Project:   ProjectSpec{Name: "test-app"},
		Component: map[string]ComponentSpec{"add": {Path: "add", Wasm: "add.wasm"}},
	}
	_, err := Transpile(m, map[string]string{}, ".")
	assert.Error(t, err)
}

func TestTranspilePrivateAccessInjectsGateway(t *testing.T) {
	m := &Manifest{
		Project: ProjectSpec{Name: "test-app", AccessControl: AccessPrivate},
		OAuth:   &OAuthConfig{Issuer: "https://test.authkit.app", Audience: "my-api"},
		Component: map[string]ComponentSpec{
			"add": {Path: "add", Wasm: "add.wasm"},
		},
	}
	resolved := map[string]string{"add": "add.wasm"}

	out, err := Transpile(m, resolved, ".")
	require.NoError(t, err)
	assert.Contains(t, out, `component = "mcp-gateway"`)
	assert.Contains(t, out, `route = "/..."`)
	assert.Contains(t, out, `mcp_jwt_issuer = "https://test.authkit.app"`)
	assert.NotContains(t, out, `route = "/add/..."`)
}

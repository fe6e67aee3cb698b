package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeployCommandFlags(t *testing.T) {
	cmd := newDeployCmd()
	assert.NotNil(t, cmd)
	assert.Equal(t, "deploy", cmd.Use)

	for _, name := range []string{"var", "access-control", "jwt-issuer", "dry-run", "yes", "path"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestDeployCommandHelp(t *testing.T) {
	cmd := newDeployCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Usage:")
}

func TestRunDeployFailsWithoutManifest(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	err := runDeploy(t.Context(), deployOptions{})
	assert.Error(t, err)
}

func TestRunDeployDryRunSkipsAuthentication(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	manifestBody := `[project]
name = "test-app"
version = "0.1.0"

[variables]
greeting = { default = "hello" }
`
	require.NoError(t, os.WriteFile("ftl.toml", []byte(manifestBody), 0600))

	err := runDeploy(t.Context(), deployOptions{DryRun: true})
	assert.NoError(t, err)
}

func TestCheckRegistryComponentsSkipsLocalComponents(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	manifestBody := `[project]
name = "test-app"
version = "0.1.0"

[component.adder]
wasm = "adder.wasm"
`
	require.NoError(t, os.WriteFile("ftl.toml", []byte(manifestBody), 0600))

	m, _, err := loadManifest("")
	require.NoError(t, err)
	assert.NoError(t, checkRegistryComponents(m))
}

func TestDisplayDeployPlanDoesNotPanicOnEmptyPlan(t *testing.T) {
	assert.NotPanics(t, func() {
		displayDeployPlan("test-app", map[string]string{})
	})
}

func TestDeployCommandDefaultPathIsCurrentDirectory(t *testing.T) {
	cmd := newDeployCmd()
	pathFlag := cmd.Flags().Lookup("path")
	require.NotNil(t, pathFlag)
	assert.Equal(t, "", pathFlag.DefValue)
}

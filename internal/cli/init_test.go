package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastertools/ftl-cli/internal/manifest"
)

func TestInitCommandFlags(t *testing.T) {
	cmd := newInitCmd()
	assert.NotNil(t, cmd)
	assert.Contains(t, cmd.Use, "init")
	assert.NotNil(t, cmd.Flags().Lookup("here"))
}

func TestRunInitCreatesProjectDirectoryAndManifest(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	require.NoError(t, runInit("test-project", false))

	manifestPath := filepath.Join(tmpDir, "test-project", "ftl.toml")
	assert.FileExists(t, manifestPath)

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)

	var m manifest.Manifest
	require.NoError(t, toml.Unmarshal(data, &m))
	assert.Equal(t, "test-project", m.Project.Name)
	assert.Equal(t, "0.1.0", m.Project.Version)
	assert.Equal(t, manifest.AccessPublic, m.Project.AccessControl)
}

func TestRunInitHereUsesCurrentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	require.NoError(t, runInit("here-project", true))

	assert.FileExists(t, filepath.Join(tmpDir, "ftl.toml"))
}

func TestGitignoreGeneration(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer func() { _ = os.Chdir(oldWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	require.NoError(t, runInit("gitignore-test", false))

	content, err := os.ReadFile(filepath.Join(tmpDir, "gitignore-test", ".gitignore"))
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, ".spin/")
	assert.Contains(t, contentStr, "*.wasm")
	assert.Contains(t, contentStr, "target/")
	assert.Contains(t, contentStr, "node_modules/")
}

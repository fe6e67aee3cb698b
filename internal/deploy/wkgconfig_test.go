package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWkgConfigPathHonorsEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom-config.toml")
	t.Setenv("WKG_CONFIG_FILE", path)
	assert.Equal(t, path, wkgConfigPath())
}

func TestLoadWkgConfigReturnsEmptyConfigWhenFileMissing(t *testing.T) {
	cfg, err := loadWkgConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Registry)
	assert.Empty(t, cfg.Registry)
}

func TestConfigureWkgRegistryAuthWritesCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("WKG_CONFIG_FILE", path)

	require.NoError(t, configureWkgRegistryAuth("https://123456789.dkr.ecr.us-west-2.amazonaws.com", "secret-password"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg wkgConfig
	require.NoError(t, toml.Unmarshal(data, &cfg))

	reg := cfg.Registry["123456789.dkr.ecr.us-west-2.amazonaws.com"]
	require.NotNil(t, reg)
	require.NotNil(t, reg.OCI)
	require.NotNil(t, reg.OCI.Auth)
	assert.Equal(t, "AWS", reg.OCI.Auth.Username)
	assert.Equal(t, "secret-password", reg.OCI.Auth.Password)
}

func TestConfigureWkgRegistryAuthStripsTrailingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("WKG_CONFIG_FILE", path)

	require.NoError(t, configureWkgRegistryAuth("registry.example.com/some/path", "pw"))

	cfg, err := loadWkgConfig(path)
	require.NoError(t, err)
	assert.Contains(t, cfg.Registry, "registry.example.com")
}

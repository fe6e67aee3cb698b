package devserver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastertools/ftl-cli/internal/manifest"
)

func TestBuildTasksSkipsRegistryAndBuildlessComponents(t *testing.T) {
	m := &manifest.Manifest{
		Component: map[string]manifest.ComponentSpec{
			"add":    {Path: "add", Build: &manifest.BuildConfig{Command: "cargo build", Workdir: "add"}},
			"static": {Path: "static"},
			"reg":    {Source: &manifest.RegistrySource{Registry: "ghcr.io", Package: "ns:pkg", Version: "1.0.0"}},
		},
	}

	tasks := BuildTasks(m)
	assert.Len(t, tasks, 1)
	assert.Equal(t, "add", tasks[0].Name)
	assert.Equal(t, "cargo build", tasks[0].Command)
}

func TestConfigListenAddrFormatsLoopback(t *testing.T) {
	cfg := Config{Port: 3000}
	assert.Equal(t, "127.0.0.1:3000", cfg.listenAddr())
}

func TestConfigHostBinaryDefaultsWhenUnset(t *testing.T) {
	assert.Equal(t, DefaultHostBinary, Config{}.hostBinary())
	assert.Equal(t, "custom-host", Config{HostBinary: "custom-host"}.hostBinary())
}

func TestHostArgsIncludesLogDirOnlyWhenSet(t *testing.T) {
	withoutLogDir := hostArgs("/tmp/spin.toml", "127.0.0.1:3000", "")
	assert.NotContains(t, withoutLogDir, "--log-dir")

	withLogDir := hostArgs("/tmp/spin.toml", "127.0.0.1:3000", "/tmp/logs")
	assert.Contains(t, withLogDir, "--log-dir")
	assert.Contains(t, withLogDir, "/tmp/logs")
}

package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldWatchIncludesAllowedExtensions(t *testing.T) {
	for _, path := range []string{
		"src/main.rs", "ftl.toml", "index.js", "app.ts", "component.jsx",
		"component.tsx", "data.json", "main.go", "script.py", "lib.c",
		"lib.cpp", "header.h",
	} {
		assert.True(t, ShouldWatch(path), "expected %q to be watched", path)
	}
}

func TestShouldWatchExcludesDirectories(t *testing.T) {
	for _, path := range []string{
		"target/debug/main.rs", "dist/bundle.js", "build/out.go",
		".spin/state.toml", "node_modules/pkg/index.js",
		"__pycache__/mod.py", ".venv/lib/foo.py",
	} {
		assert.False(t, ShouldWatch(path), "expected %q to be excluded", path)
	}
}

func TestShouldWatchExcludesSuffixes(t *testing.T) {
	for _, path := range []string{
		"out.wasm", "module.wat", "Cargo.lock", "package-lock.json",
		"yarn.lock", "pnpm-lock.yaml", "go.sum",
	} {
		assert.False(t, ShouldWatch(path), "expected %q to be excluded", path)
	}
}

func TestShouldWatchExcludesUnknownExtensions(t *testing.T) {
	assert.False(t, ShouldWatch("README.md"))
	assert.False(t, ShouldWatch("Makefile"))
}

func TestWatcherDebouncesRapidChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0644))

	w, err := New(root)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main // edit"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case batch := <-w.Events:
		assert.NotEmpty(t, batch)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a debounced event batch within 2s")
	}
}

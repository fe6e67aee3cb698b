package manifest

import (
	"fmt"
	"os"
)

// EnsureRuntimeManifest transpiles m to spin.toml text and writes it to a
// temporary file, returning a cleanup function the caller must defer
// immediately. The cleanup removes the file unconditionally, so it is safe
// to call even if a later step panics or the process receives a signal,
// provided the caller defers it rather than calling it inline.
func EnsureRuntimeManifest(m *Manifest, resolvedPaths map[string]string, projectRoot string) (path string, cleanup func(), err error) {
	text, err := Transpile(m, resolvedPaths, projectRoot)
	if err != nil {
		return "", func() {}, err
	}

	f, err := os.CreateTemp(projectRoot, "spin-*.toml")
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create runtime manifest: %w", err)
	}
	path = f.Name()

	cleanup = func() { _ = os.Remove(path) }

	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write runtime manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to close runtime manifest: %w", err)
	}

	return path, cleanup, nil
}

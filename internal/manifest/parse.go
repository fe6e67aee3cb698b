package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFilename is the conventional project manifest name.
const DefaultFilename = "ftl.toml"

// Load reads and parses a project manifest from path, then validates it.
// On validation failure the returned error is a ValidationErrors; callers
// that want field-level detail should type-assert for it.
func Load(path string) (*Manifest, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path) // #nosec G304 - path supplied by CLI caller
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no manifest found at %s", path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if errs := Validate(&m); len(errs) > 0 {
		return nil, errs
	}

	return &m, nil
}

// LoadAuto loads the manifest from the conventional ftl.toml path in the
// current directory.
func LoadAuto() (*Manifest, error) {
	return Load(DefaultFilename)
}

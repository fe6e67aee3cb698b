package deploy

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultVersion is used when no version can be extracted from any of the
// recognized project files (spec.md §3 "Deployment Plan").
const DefaultVersion = "0.1.0"

// ExtractVersion resolves a component's version in the priority order fixed
// by spec.md §3: Cargo.toml (package.version), package.json (version),
// pyproject.toml (project.version), go.mod (a "// Version: vX.Y.Z" comment),
// else DefaultVersion.
func ExtractVersion(componentDir string) string {
	if v, ok := cargoVersion(componentDir); ok {
		return v
	}
	if v, ok := packageJSONVersion(componentDir); ok {
		return v
	}
	if v, ok := pyprojectVersion(componentDir); ok {
		return v
	}
	if v, ok := goModVersion(componentDir); ok {
		return v
	}
	return DefaultVersion
}

func cargoVersion(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "Cargo.toml")) // #nosec G304 - project-relative path
	if err != nil {
		return "", false
	}
	var doc struct {
		Package struct {
			Version string `toml:"version"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil || doc.Package.Version == "" {
		return "", false
	}
	return doc.Package.Version, true
}

func packageJSONVersion(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json")) // #nosec G304
	if err != nil {
		return "", false
	}
	var doc struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version == "" {
		return "", false
	}
	return doc.Version, true
}

func pyprojectVersion(dir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(dir, "pyproject.toml")) // #nosec G304
	if err != nil {
		return "", false
	}
	var doc struct {
		Project struct {
			Version string `toml:"version"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil || doc.Project.Version == "" {
		return "", false
	}
	return doc.Project.Version, true
}

// goModVersion extracts a version from a commented "// Version: vX.Y.Z" line
// in go.mod, the only place a Go module records an application version.
func goModVersion(dir string) (string, bool) {
	f, err := os.Open(filepath.Join(dir, "go.mod")) // #nosec G304
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "// Version:") {
			continue
		}
		v := strings.TrimSpace(strings.TrimPrefix(line, "// Version:"))
		v = strings.TrimPrefix(v, "v")
		if v != "" {
			return v, true
		}
	}
	return "", false
}

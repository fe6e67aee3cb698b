package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// wkgConfig mirrors the subset of wkg's own config file (default
// ~/.config/wasm-pkg/config.toml, overridable via WKG_CONFIG_FILE) that
// `wkg oci push` consults for registry auth.
type wkgConfig struct {
	DefaultRegistry string                  `toml:"default_registry,omitempty"`
	Registry        map[string]*wkgRegistry `toml:"registry,omitempty"`
}

type wkgRegistry struct {
	OCI *wkgOCI `toml:"oci,omitempty"`
}

type wkgOCI struct {
	Auth *wkgAuth `toml:"auth,omitempty"`
}

type wkgAuth struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func wkgConfigPath() string {
	if path := os.Getenv("WKG_CONFIG_FILE"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "wkg-config.toml"
	}
	return filepath.Join(home, ".config", "wasm-pkg", "config.toml")
}

func loadWkgConfig(path string) (*wkgConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &wkgConfig{Registry: make(map[string]*wkgRegistry)}, nil
		}
		return nil, fmt.Errorf("failed to read wkg config: %w", err)
	}

	var cfg wkgConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse wkg config: %w", err)
	}
	if cfg.Registry == nil {
		cfg.Registry = make(map[string]*wkgRegistry)
	}
	return &cfg, nil
}

func saveWkgConfig(path string, cfg *wkgConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create wkg config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal wkg config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write wkg config: %w", err)
	}
	return nil
}

// configureWkgRegistryAuth writes the already-decoded ECR password into
// wkg's own config file so `wkg oci push` can authenticate the registry,
// independent of whatever `docker login` put in Docker's credential store.
func configureWkgRegistryAuth(registryURI, password string) error {
	registry := strings.TrimPrefix(strings.TrimPrefix(registryURI, "https://"), "http://")
	if idx := strings.Index(registry, "/"); idx > 0 {
		registry = registry[:idx]
	}

	path := wkgConfigPath()
	cfg, err := loadWkgConfig(path)
	if err != nil {
		return err
	}

	if cfg.Registry[registry] == nil {
		cfg.Registry[registry] = &wkgRegistry{}
	}
	cfg.Registry[registry].OCI = &wkgOCI{Auth: &wkgAuth{Username: "AWS", Password: password}}

	return saveWkgConfig(path, cfg)
}

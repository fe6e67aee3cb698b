// Package config manages per-user FTL CLI configuration (C14): preferences
// and cached identity info, persisted as a JSON document under the user's
// config directory.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Config is the user's persisted FTL CLI configuration.
type Config struct {
	Preferences     Preferences `json:"preferences,omitempty"`
	LastUpdateCheck string      `json:"last_update_check,omitempty"`
	CurrentUser     *UserInfo   `json:"current_user,omitempty"`
	Version         string      `json:"version"`
}

// UserInfo caches display info about the logged-in user, set after a
// successful device flow completion (internal/auth.Manager.CompleteDeviceFlow).
type UserInfo struct {
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Preferences are user-level display/behavior toggles.
type Preferences struct {
	ColorOutput   bool `json:"color_output"`
	Verbose       bool `json:"verbose"`
	ConfirmDeploy bool `json:"confirm_deploy"`
}

var (
	instance *Config
	once     sync.Once
	mu       sync.RWMutex
)

func configPath() (string, error) {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = xdg
	} else {
		var err error
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to get config directory: %w", err)
		}
	}
	return filepath.Join(configDir, "ftl", "config.json"), nil
}

// Load reads the on-disk config, creating a default one in memory if none
// exists yet. The result is cached process-wide.
func Load() (*Config, error) {
	var err error
	once.Do(func() {
		instance, err = load()
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is controlled via configPath()
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Preferences: Preferences{
			ColorOutput:   true,
			ConfirmDeploy: true,
		},
	}
}

// Save writes the configuration atomically (write to a temp file, then rename).
func (c *Config) Save() error {
	mu.Lock()
	defer mu.Unlock()

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// GetCurrentUser returns the cached user info, or nil if never set.
func (c *Config) GetCurrentUser() *UserInfo {
	mu.RLock()
	defer mu.RUnlock()
	return c.CurrentUser
}

// SetCurrentUser replaces the cached user info and persists it.
func (c *Config) SetCurrentUser(user *UserInfo) error {
	mu.Lock()
	c.CurrentUser = user
	mu.Unlock()
	return c.Save()
}

// ClearCurrentUser removes the cached user info (called on logout) and persists it.
func (c *Config) ClearCurrentUser() error {
	mu.Lock()
	c.CurrentUser = nil
	mu.Unlock()
	return c.Save()
}

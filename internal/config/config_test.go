package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func resetSingleton(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	oldXDG := os.Getenv("XDG_CONFIG_HOME")
	_ = os.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Cleanup(func() {
		if oldXDG != "" {
			_ = os.Setenv("XDG_CONFIG_HOME", oldXDG)
		} else {
			_ = os.Unsetenv("XDG_CONFIG_HOME")
		}
	})
	instance = nil
	once = sync.Once{}
}

func TestConfigLoadDefaults(t *testing.T) {
	resetSingleton(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", cfg.Version)
	}
	if !cfg.Preferences.ColorOutput {
		t.Error("expected ColorOutput to default true")
	}
	if cfg.GetCurrentUser() != nil {
		t.Error("expected no current user by default")
	}
}

func TestSetAndClearCurrentUser(t *testing.T) {
	resetSingleton(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	user := &UserInfo{Username: "ada", Email: "ada@example.com", UserID: "user_123"}
	if err := cfg.SetCurrentUser(user); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}
	if got := cfg.GetCurrentUser(); got == nil || got.Username != "ada" {
		t.Fatalf("GetCurrentUser = %+v", got)
	}

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	if err := cfg.ClearCurrentUser(); err != nil {
		t.Fatalf("ClearCurrentUser: %v", err)
	}
	if got := cfg.GetCurrentUser(); got != nil {
		t.Errorf("expected nil user after clear, got %+v", got)
	}
}

func TestConfigPersistsAcrossLoads(t *testing.T) {
	resetSingleton(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.SetCurrentUser(&UserInfo{Username: "grace"}); err != nil {
		t.Fatalf("SetCurrentUser: %v", err)
	}

	// Force a fresh read from disk.
	instance = nil
	once = sync.Once{}

	cfg2, err := Load()
	if err != nil {
		t.Fatalf("reload Load: %v", err)
	}
	if got := cfg2.GetCurrentUser(); got == nil || got.Username != "grace" {
		t.Fatalf("user not persisted, got %+v", got)
	}
}

func TestConfigPathRespectsXDG(t *testing.T) {
	resetSingleton(t)

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath: %v", err)
	}
	if filepath.Base(path) != "config.json" {
		t.Errorf("unexpected config path: %s", path)
	}
}

func TestConcurrentUserUpdates(t *testing.T) {
	resetSingleton(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan bool, 10)
	for i := 0; i < 5; i++ {
		go func(n int) {
			_ = cfg.SetCurrentUser(&UserInfo{Username: "user"})
			done <- true
		}(i)
	}
	for i := 0; i < 5; i++ {
		go func() {
			_ = cfg.GetCurrentUser()
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

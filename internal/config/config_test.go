package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
server:
  port: 9090
  read_timeout: 15s

database:
  dialect: sqlite
  path: /tmp/test-tapper.db

leaderboard:
  default_limit: 25
  max_limit: 50

retention:
  days: 7
  interval: 1h
  enabled: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	// Unset values fall back to defaults
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want default 10s", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Path != "/tmp/test-tapper.db" {
		t.Errorf("Path = %q", cfg.Database.Path)
	}
	if cfg.Leaderboard.DefaultLimit != 25 || cfg.Leaderboard.MaxLimit != 50 {
		t.Errorf("leaderboard limits = %d/%d, want 25/50",
			cfg.Leaderboard.DefaultLimit, cfg.Leaderboard.MaxLimit)
	}
	if cfg.Retention.Days != 7 || cfg.Retention.Interval != time.Hour || !cfg.Retention.Enabled {
		t.Errorf("retention = %+v", cfg.Retention)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TAPPER_DB_PATH", "/data/tapper.db")

	content := "database:\n  path: ${TAPPER_DB_PATH}\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Database.Path != "/data/tapper.db" {
		t.Errorf("Path = %q, want env-expanded value", cfg.Database.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Dialect != "sqlite" || cfg.Database.Path != "tapper.db" {
		t.Errorf("database defaults = %q/%q", cfg.Database.Dialect, cfg.Database.Path)
	}
	if cfg.Leaderboard.DefaultLimit != 100 || cfg.Leaderboard.MaxLimit != 500 {
		t.Errorf("leaderboard defaults = %d/%d", cfg.Leaderboard.DefaultLimit, cfg.Leaderboard.MaxLimit)
	}
	if cfg.Retention.Days != 30 || cfg.Retention.Interval != 24*time.Hour || !cfg.Retention.Enabled {
		t.Errorf("retention defaults = %+v", cfg.Retention)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv("CONNECT_CALENDAR_CONFIG_FILE", filepath.Join(tmp, "missing.env"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.APIBaseURL != defaultBaseURL {
		t.Fatalf("base url = %q", cfg.APIBaseURL)
	}
	if cfg.Cooldown != 3*time.Second {
		t.Fatalf("cooldown = %v", cfg.Cooldown)
	}
	if cfg.BufferMonths != 2 {
		t.Fatalf("buffer months = %d", cfg.BufferMonths)
	}
	if cfg.FetchLimit != 200 {
		t.Fatalf("fetch limit = %d", cfg.FetchLimit)
	}
	wantState := filepath.Join(tmp, "state", "connect-calendar")
	if cfg.StateDir != wantState {
		t.Fatalf("state dir = %q, want %q", cfg.StateDir, wantState)
	}
	if cfg.SnapshotPath != filepath.Join(wantState, "snapshot.json") {
		t.Fatalf("snapshot path = %q", cfg.SnapshotPath)
	}
}

func TestLoad_ConfigFileOverrides(t *testing.T) {
	tmp := t.TempDir()
	xdgConfig := filepath.Join(tmp, "config")
	if err := os.MkdirAll(filepath.Join(xdgConfig, "connect-calendar"), 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}

	configFile := filepath.Join(xdgConfig, "connect-calendar", "config.env")
	content := "API_BASE_URL=http://localhost:9999\nCOOLDOWN_MS=500\nBUFFER_MONTHS=99\nFETCH_LIMIT=50\n"
	if err := os.WriteFile(configFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", xdgConfig)
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	t.Setenv("CONNECT_CALENDAR_CONFIG_FILE", configFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:9999" {
		t.Fatalf("base url = %q", cfg.APIBaseURL)
	}
	if cfg.Cooldown != 500*time.Millisecond {
		t.Fatalf("cooldown = %v", cfg.Cooldown)
	}
	if cfg.BufferMonths != maxBufferMonths {
		t.Fatalf("buffer months should clamp to %d, got %d", maxBufferMonths, cfg.BufferMonths)
	}
	if cfg.FetchLimit != 50 {
		t.Fatalf("fetch limit = %d", cfg.FetchLimit)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Timer.TickInterval != time.Second {
		t.Errorf("expected tick interval 1s, got %v", cfg.Timer.TickInterval)
	}
	if !cfg.Timer.AutoAdvance {
		t.Error("expected auto advance by default")
	}
	if cfg.Input.Debounce != 300*time.Millisecond {
		t.Errorf("expected debounce 300ms, got %v", cfg.Input.Debounce)
	}
	if !cfg.IPC.Enabled || !cfg.Sound.Enabled {
		t.Error("expected ipc and sound enabled")
	}
	if cfg.DBPath == "" || cfg.IPC.SignalsDir == "" || cfg.Log.File == "" {
		t.Errorf("expected derived paths, got %+v", cfg)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "info" || cfg.Timer.TickInterval != time.Second {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if filepath.Base(cfg.DBPath) != "zenfocus.db" {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
data_dir: ` + tmpDir + `
log:
  level: debug
timer:
  tick_interval: 500ms
  auto_advance: false
input:
  debounce: 1s
ipc:
  enabled: false
  address: 127.0.0.1:40123
sound:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Log.Level)
	}
	if cfg.Timer.TickInterval != 500*time.Millisecond || cfg.Timer.AutoAdvance {
		t.Errorf("unexpected timer config %+v", cfg.Timer)
	}
	if cfg.Input.Debounce != time.Second {
		t.Errorf("expected debounce 1s, got %v", cfg.Input.Debounce)
	}
	if cfg.IPC.Enabled || cfg.IPC.Address != "127.0.0.1:40123" {
		t.Errorf("unexpected ipc config %+v", cfg.IPC)
	}
	if cfg.DBPath != filepath.Join(tmpDir, "zenfocus.db") {
		t.Errorf("expected db under data dir, got %q", cfg.DBPath)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ZENFOCUS_TIMER_TICK_INTERVAL", "2s")
	t.Setenv("ZENFOCUS_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timer.TickInterval != 2*time.Second {
		t.Errorf("expected env tick interval 2s, got %v", cfg.Timer.TickInterval)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env log level warn, got %q", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Timer.TickInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero tick interval")
	}

	cfg = Default()
	cfg.Input.Debounce = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative debounce")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.DataDir = dir
	cfg.Timer.TickInterval = 250 * time.Millisecond
	cfg.Sound.AlertID = "4111003"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Timer.TickInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", loaded.Timer.TickInterval)
	}
	if loaded.Sound.AlertID != "4111003" {
		t.Errorf("expected alert id 4111003, got %q", loaded.Sound.AlertID)
	}
}

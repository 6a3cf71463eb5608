package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitConfig_WritesStarterFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	written, err := InitConfig(path, false)
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	if written != path {
		t.Fatalf("expected %q, got %q", path, written)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load written config: %v", err)
	}
	if len(cfg.Channels) != 1 {
		t.Fatalf("expected 1 channel in starter config, got %d", len(cfg.Channels))
	}
}

func TestInitConfig_RefusesToOverwrite(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if _, err := InitConfig(path, false); err != nil {
		t.Fatalf("first InitConfig failed: %v", err)
	}
	if _, err := InitConfig(path, false); err == nil {
		t.Fatal("expected error on second InitConfig without force")
	}
	if _, err := InitConfig(path, true); err != nil {
		t.Fatalf("InitConfig with force failed: %v", err)
	}
}

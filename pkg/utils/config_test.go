package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEditorConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mangapages.yaml")
	data := []byte(`
log_level: debug
editor:
  api: http://file:8080
  transport: grpc
  debounce_ms: 200
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MANGAPAGES_CONFIG", path)
	t.Setenv("MANGAPAGES_API", "http://env:8080")

	cfg, err := LoadEditorConfig()
	if err != nil {
		t.Fatalf("LoadEditorConfig: %v", err)
	}
	if cfg.API != "http://env:8080" {
		t.Errorf("API = %q, env should win", cfg.API)
	}
	if cfg.Transport != "grpc" {
		t.Errorf("Transport = %q, want file value", cfg.Transport)
	}
	if cfg.Debounce != 200*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Debounce)
	}
	if cfg.NoticeTTL != 4*time.Second {
		t.Errorf("NoticeTTL = %v", cfg.NoticeTTL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("MANGAPAGES_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("LoadServerConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.TCPAddr != ":7070" || cfg.GRPCAddr != ":9090" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile accepted invalid YAML")
	}
}

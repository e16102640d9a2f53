package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig with no file failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("environment = %q, want development", cfg.Environment)
	}
	if cfg.Addr != "0.0.0.0:15000" {
		t.Errorf("addr = %q, want 0.0.0.0:15000", cfg.Addr)
	}
	if len(cfg.VoteOptions) == 0 {
		t.Error("default vote options are empty")
	}
	if cfg.VoteOptions[0] != 0 || cfg.VoteOptions[len(cfg.VoteOptions)-1] != 60 {
		t.Errorf("vote options = %v, want the 0..60 scale", cfg.VoteOptions)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte(`
environment: production
addr: "127.0.0.1:9000"
allowed_origins:
  - https://poker.example.com
vote_options: [1, 2, 3]
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("environment = %q, want production", cfg.Environment)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("addr = %q, want 127.0.0.1:9000", cfg.Addr)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://poker.example.com" {
		t.Errorf("allowed origins = %v", cfg.AllowedOrigins)
	}
	if len(cfg.VoteOptions) != 3 {
		t.Errorf("vote options = %v, want [1 2 3]", cfg.VoteOptions)
	}
}

func TestLoadConfigRejectsEmptyScale(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("vote_options: []\n"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Error("empty vote_options must be rejected")
	}
}

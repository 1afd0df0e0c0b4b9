package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Cache.TTLDays != 7 {
		t.Errorf("default TTL = %d days, want 7", cfg.Cache.TTLDays)
	}
	if cfg.Fights.Window != 15 || cfg.Fights.TeamfightThreshold != 3 {
		t.Errorf("fight defaults = %+v", cfg.Fights)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "cache:\n  ttlDays: 14\nfights:\n  window: 20\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.TTLDays != 14 {
		t.Errorf("ttlDays = %d, want 14", cfg.Cache.TTLDays)
	}
	if cfg.Fights.Window != 20 {
		t.Errorf("window = %v, want 20", cfg.Fights.Window)
	}
	// Unset keys keep their defaults.
	if cfg.Fights.TeamfightThreshold != 3 {
		t.Errorf("threshold = %d, want default 3", cfg.Fights.TeamfightThreshold)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("explicitly named missing file should error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.Fights.TeamfightThreshold = 1
	if err := cfg.Validate(); err == nil {
		t.Error("threshold below 2 should be rejected")
	}

	cfg = Default()
	cfg.Cache.TTLDays = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero TTL should be rejected")
	}
}

func TestTTLConversion(t *testing.T) {
	c := CacheConfig{TTLDays: 7}
	if c.TTL().Hours() != 7*24 {
		t.Errorf("TTL = %v", c.TTL())
	}
}

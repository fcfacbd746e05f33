package internal

import (
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.AutoYes {
		t.Error("auto-confirm must be off by default")
	}
	if !cfg.Notify {
		t.Error("notifications should be on by default")
	}
	if cfg.CacheTTL != 300 {
		t.Errorf("CacheTTL = %d, want 300", cfg.CacheTTL)
	}
	if cfg.TTL() != 5*time.Minute {
		t.Errorf("TTL() = %v, want 5m", cfg.TTL())
	}
}

func TestConfigValidate(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
	bad := &Config{CacheTTL: -1}
	if err := bad.Validate(); err == nil {
		t.Error("negative cache TTL must fail validation")
	}
}

func TestDefaultPaths(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths: %v", err)
	}
	checks := map[string]string{
		"ConfigFile": p.ConfigFile,
		"LedgerFile": p.LedgerFile,
		"CacheDir":   p.CacheDir,
		"UnitDir":    p.UnitDir,
	}
	for name, path := range checks {
		if path == "" || !strings.HasPrefix(path, "/") {
			t.Errorf("%s = %q, want absolute path", name, path)
		}
	}
	if !strings.HasSuffix(p.ConfigFile, "raido/config.yaml") {
		t.Errorf("ConfigFile = %q", p.ConfigFile)
	}
	if !strings.HasSuffix(p.HookFile, ".hook") {
		t.Errorf("HookFile = %q", p.HookFile)
	}
}

package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds the persisted user settings. The file is created with
// defaults on first use and is only rewritten by direct edits.
type Config struct {
	AutoYes  bool `yaml:"auto_yes"`
	Notify   bool `yaml:"notify"`
	CacheTTL int  `yaml:"cache_ttl"` // seconds
}

// Validate validates the settings.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CacheTTL, validation.Min(0)),
	)
}

// TTL returns the metadata cache time-to-live as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		AutoYes:  false,
		Notify:   true,
		CacheTTL: 300,
	}
}

// Paths holds the resolved per-user file locations used by the tool.
type Paths struct {
	ConfigFile string
	LedgerFile string
	CacheDir   string
	UnitDir    string
	HookFile   string
}

// DefaultPaths derives the standard locations from the user's home directory.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("config: resolve home dir: %w", err)
	}
	return Paths{
		ConfigFile: filepath.Join(home, ".config", "raido", "config.yaml"),
		LedgerFile: filepath.Join(home, ".local", "share", "raido", "raido.db"),
		CacheDir:   filepath.Join(home, ".cache", "raido"),
		UnitDir:    filepath.Join(home, ".config", "systemd", "user"),
		HookFile:   "/etc/pacman.d/hooks/raido-update.hook",
	}, nil
}

// Package internal wires the application context and implements the
// build/install orchestration on top of it.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/starford/raido/internal/aur"
	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/ledger"
	"github.com/starford/raido/internal/runner"
	pkgconfig "github.com/starford/raido/pkg/config"
)

// metadataClient is the remote metadata surface the orchestrator needs.
type metadataClient interface {
	Info(ctx context.Context, name string) (*aur.Package, error)
	Search(ctx context.Context, term string, limit int) ([]aur.Package, int, error)
}

// commandRunner abstracts external command execution.
type commandRunner interface {
	Run(ctx context.Context, c runner.Cmd) error
}

// App is the application context shared by every command. It is constructed
// once per invocation; components receive it explicitly instead of reaching
// for globals.
type App struct {
	cfg   *Config
	paths Paths
	log   *slog.Logger
	out   io.Writer

	store  ledger.Store
	client metadataClient
	cache  *cache.Store

	run           commandRunner // interactive command path
	runUnattended commandRunner // concurrent workers: prompts resolved from auto_yes
	installed     func(ctx context.Context, name string) bool

	dryRun  bool
	workers int
}

// New constructs the application context: settings, metadata cache, RPC
// client, ledger, and process runner.
func New(opts ...Option) (*App, error) {
	a := &App{
		log:     slog.Default(),
		out:     os.Stdout,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.paths == (Paths{}) {
		p, err := DefaultPaths()
		if err != nil {
			return nil, err
		}
		a.paths = p
	}

	if a.cfg == nil {
		cfg := NewDefaultConfig()
		if err := pkgconfig.LoadOrInit(a.paths.ConfigFile, cfg); err != nil {
			if !errors.Is(err, pkgconfig.ErrDecode) {
				return nil, fmt.Errorf("load config: %w", err)
			}
			// A corrupt settings file falls back to defaults rather than
			// blocking every command.
			a.log.Warn("config file is unreadable, using defaults",
				slog.String("path", a.paths.ConfigFile),
				slog.String("error", err.Error()))
			cfg = NewDefaultConfig()
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
		a.cfg = cfg
	}

	if a.cache == nil {
		c, err := cache.New(a.paths.CacheDir, a.cfg.TTL())
		if err != nil {
			return nil, err
		}
		a.cache = c
	}

	if a.client == nil {
		a.client = aur.NewClient(aur.DefaultBaseURL, a.cache)
	}

	if a.store == nil {
		if err := os.MkdirAll(filepath.Dir(a.paths.LedgerFile), 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
		db, err := ledger.Open(a.paths.LedgerFile)
		if err != nil {
			return nil, err
		}
		a.store = db
	}

	if a.run == nil {
		r := runner.New(a.cfg.AutoYes, a.dryRun, a.log)
		a.run = r
		a.runUnattended = r.Unattended()
		a.installed = r.Installed
	}

	return a, nil
}

// Close releases the ledger handle.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// PurgeCache deletes every cached metadata entry.
func (a *App) PurgeCache() error {
	n, err := a.cache.Purge()
	if err != nil {
		return err
	}
	a.log.Info("cache cleared", slog.Int("entries", n))
	return nil
}

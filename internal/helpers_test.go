package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/aur"
	"github.com/starford/raido/internal/pkgbuild"
	"github.com/starford/raido/internal/runner"
	"github.com/starford/raido/internal/testutil"
)

// fakeClient serves canned metadata.
type fakeClient struct {
	pkgs          map[string]*aur.Package
	searchResults []aur.Package
}

func (f *fakeClient) Info(_ context.Context, name string) (*aur.Package, error) {
	p, ok := f.pkgs[name]
	if !ok {
		return nil, fmt.Errorf("aur: package %s: %w", name, apperr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeClient) Search(_ context.Context, _ string, limit int) ([]aur.Package, int, error) {
	results := f.searchResults
	remaining := 0
	if limit > 0 && len(results) > limit {
		remaining = len(results) - limit
		results = results[:limit]
	}
	return results, remaining, nil
}

// execRecorder records every command instead of executing it. A git clone
// materializes the recipe directory so the pipeline can proceed.
type execRecorder struct {
	mu   sync.Mutex
	cmds []runner.Cmd
	fail func(c runner.Cmd) error
}

func (f *execRecorder) Run(_ context.Context, c runner.Cmd) error {
	f.mu.Lock()
	f.cmds = append(f.cmds, c)
	f.mu.Unlock()

	if f.fail != nil {
		if err := f.fail(c); err != nil {
			return err
		}
	}
	if len(c.Argv) > 0 && c.Argv[0] == "git" {
		dir := c.Argv[len(c.Argv)-1]
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, pkgbuild.RecipeFile), []byte("depends=()\n"), 0o644)
	}
	return nil
}

func (f *execRecorder) recorded() []runner.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runner.Cmd(nil), f.cmds...)
}

func testApp(t *testing.T, client metadataClient, run commandRunner) *App {
	t.Helper()
	return &App{
		cfg:           &Config{AutoYes: false, Notify: false, CacheTTL: 300},
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:           io.Discard,
		store:         testutil.TestLedger(t),
		client:        client,
		run:           run,
		runUnattended: run,
		installed:     func(context.Context, string) bool { return true },
		workers:       2,
	}
}

package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/starford/raido/internal/aur"
	"github.com/starford/raido/internal/ledger"
	"github.com/starford/raido/internal/notify"
	"github.com/starford/raido/internal/pkgbuild"
	"github.com/starford/raido/internal/runner"
)

// InstallOptions controls prompting behaviour for one install run.
type InstallOptions struct {
	// AssumeYes skips the recipe review and asks the build tool to build
	// and install in a single unattended invocation.
	AssumeYes bool
	// NonInteractive disables terminal prompts entirely; confirmations are
	// resolved from the persisted auto-confirm setting. The concurrent
	// update path always sets this.
	NonInteractive bool
}

// Install runs the full build pipeline for one package: metadata fetch,
// shallow clone into an ephemeral work directory, optional recipe review,
// dependency check, build and install, ledger write-back, notification.
// Any step's failure aborts the run; the work directory is always removed.
func (a *App) Install(ctx context.Context, name string, opts InstallOptions) error {
	pkg, err := a.client.Info(ctx, name)
	if err != nil {
		return err
	}

	run := a.run
	if opts.NonInteractive {
		run = a.runUnattended
	}
	// A non-interactive run cannot drive the two-step prompted build, so it
	// always uses the single unattended invocation.
	autoYes := opts.AssumeYes || a.cfg.AutoYes || opts.NonInteractive

	workDir, err := os.MkdirTemp("", "raido-*")
	if err != nil {
		return fmt.Errorf("install %s: create work dir: %w", name, err)
	}
	defer os.RemoveAll(workDir)

	recipeDir := filepath.Join(workDir, name)
	a.log.Info("cloning build recipe",
		slog.String("package", name),
		slog.String("repo", pkg.RepoURL()))
	if err := run.Run(ctx, runner.Cmd{
		Argv: []string{"git", "clone", "--depth", "1", pkg.RepoURL(), recipeDir},
	}); err != nil {
		return err
	}

	if !autoYes && !opts.NonInteractive {
		if err := a.reviewRecipe(ctx, run, recipeDir); err != nil {
			return err
		}
	}

	if a.dryRun {
		a.log.Info("dry-run: skipping dependency check", slog.String("package", name))
	} else {
		checker := &pkgbuild.Checker{Runner: run, Installed: a.installed}
		if err := checker.CheckAndInstall(ctx, recipeDir); err != nil {
			return err
		}
	}

	if err := a.build(ctx, run, name, recipeDir, autoYes); err != nil {
		return err
	}

	if a.dryRun {
		a.log.Info("dry-run: skipping ledger update", slog.String("package", name))
		return nil
	}

	now := time.Now().UTC()
	rec := ledger.Record{
		Name:        name,
		Version:     pkg.Version,
		InstalledAt: now,
		LastUpdate:  now,
		IsRolling:   aur.IsRolling(name),
	}
	if err := a.store.Upsert(rec); err != nil {
		return err
	}

	a.log.Info("installed package",
		slog.String("package", name),
		slog.String("version", pkg.Version))
	a.notifyUser(ctx, "Raido", fmt.Sprintf("Installed %s %s", name, pkg.Version))
	return nil
}

// build invokes the native build tool. Auto-confirm mode builds and installs
// in one unattended invocation; interactive mode builds first and confirms
// again before installing.
func (a *App) build(ctx context.Context, run commandRunner, name, recipeDir string, autoYes bool) error {
	env := []string{fmt.Sprintf("MAKEFLAGS=-j%d", runtime.NumCPU())}

	if autoYes {
		return run.Run(ctx, runner.Cmd{
			Argv: []string{"makepkg", "-si", "--noconfirm"},
			Dir:  recipeDir,
			Env:  env,
		})
	}

	if err := run.Run(ctx, runner.Cmd{
		Argv:   []string{"makepkg", "-s"},
		Dir:    recipeDir,
		Env:    env,
		Prompt: fmt.Sprintf("Build %s?", name),
	}); err != nil {
		return err
	}
	return run.Run(ctx, runner.Cmd{
		Argv:   []string{"makepkg", "-i"},
		Dir:    recipeDir,
		Prompt: fmt.Sprintf("Install %s?", name),
	})
}

// reviewRecipe opens the recipe in the user's editor after confirmation.
func (a *App) reviewRecipe(ctx context.Context, run commandRunner, recipeDir string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nvim"
	}
	return run.Run(ctx, runner.Cmd{
		Argv:   []string{editor, pkgbuild.RecipeFile},
		Dir:    recipeDir,
		Prompt: "Review PKGBUILD before building?",
	})
}

// Remove uninstalls a package via the native package manager and drops its
// ledger row.
func (a *App) Remove(ctx context.Context, name string) error {
	if err := a.run.Run(ctx, runner.Cmd{
		Argv:   []string{"sudo", "pacman", "-Rns", name},
		Prompt: fmt.Sprintf("Remove %s?", name),
	}); err != nil {
		return err
	}
	if a.dryRun {
		return nil
	}
	if err := a.store.Delete(name); err != nil {
		return err
	}
	a.log.Info("removed package", slog.String("package", name))
	return nil
}

// Search prints remote matches for term, truncated to limit.
func (a *App) Search(ctx context.Context, term string, limit int) error {
	results, remaining, err := a.client.Search(ctx, term, limit)
	if err != nil {
		return err
	}
	for _, pkg := range results {
		fmt.Fprintf(a.out, "%s: %s (votes: %d)\n", pkg.Name, pkg.Description, pkg.NumVotes)
	}
	if remaining > 0 {
		fmt.Fprintf(a.out, "... and %d more. Use --limit to see more.\n", remaining)
	}
	return nil
}

// notifyUser raises a desktop notification; failure never affects the
// enclosing operation.
func (a *App) notifyUser(ctx context.Context, title, body string) {
	if !a.cfg.Notify || a.dryRun {
		return
	}
	if err := notify.Send(ctx, title, body); err != nil {
		a.log.Debug("notification failed", slog.String("error", err.Error()))
	}
}

package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/ledger"
)

// rollingCoolDown is how long a rolling (VCS) package is left alone after
// an update before it becomes an update candidate again. Heuristic carried
// over from the original tooling.
const rollingCoolDown = 7 * 24 * time.Hour

// Status reports version drift between the ledger and upstream metadata.
// Lookups fan out across the worker pool; a failed lookup is logged and
// skipped without affecting its siblings.
func (a *App) Status(ctx context.Context, showAll bool) error {
	records, err := a.store.ListAll()
	if err != nil {
		return err
	}

	lines := make([]string, len(records))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			pkg, err := a.client.Info(ctx, rec.Name)
			if err != nil {
				a.log.Warn("status lookup failed",
					slog.String("package", rec.Name),
					slog.String("error", err.Error()))
				return nil
			}
			if pkg.Version != rec.Version || showAll {
				lines[i] = fmt.Sprintf("%s: installed %s, upstream %s", rec.Name, rec.Version, pkg.Version)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, line := range lines {
		if line != "" {
			fmt.Fprintln(a.out, line)
		}
	}
	return nil
}

// updateResult is one package's outcome from a bulk update run.
type updateResult struct {
	name string
	err  error
}

// Update rebuilds every candidate package concurrently. Each worker runs
// the full install pipeline non-interactively; an individual failure is
// logged and its siblings continue. The command fails only after the whole
// batch has been attempted.
func (a *App) Update(ctx context.Context) error {
	records, err := a.store.ListAll()
	if err != nil {
		return err
	}

	candidates := updateCandidates(records, time.Now().UTC())
	if len(candidates) == 0 {
		a.log.Info("nothing to update")
		return nil
	}

	results := make([]updateResult, len(candidates))
	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, rec := range candidates {
		i, rec := i, rec
		g.Go(func() error {
			err := a.Install(ctx, rec.Name, InstallOptions{NonInteractive: true})
			results[i] = updateResult{name: rec.Name, err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, res := range results {
		if res.err == nil {
			continue
		}
		failed++
		a.log.Error("update failed",
			slog.String("package", res.name),
			slog.String("error", res.err.Error()))
	}
	if failed > 0 {
		return fmt.Errorf("update: %d of %d packages failed", failed, len(candidates))
	}
	return nil
}

// updateCandidates filters out rolling packages still inside their
// cool-down window; everything else is rebuilt.
func updateCandidates(records []ledger.Record, now time.Time) []ledger.Record {
	var out []ledger.Record
	for _, r := range records {
		if r.IsRolling && now.Sub(r.LastUpdate) < rollingCoolDown {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Package runner funnels every external tool invocation through one place,
// with dry-run suppression and optional interactive confirmation.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/starford/raido/internal/apperr"
)

// Cmd describes one external command invocation.
type Cmd struct {
	Argv   []string
	Dir    string
	Env    []string // appended to the parent environment
	Prompt string   // non-empty: confirm before executing, unless auto-confirm
}

// Runner executes external commands with inherited stdio so build logs
// stay visible to the user live.
type Runner struct {
	AutoYes bool
	DryRun  bool
	// NonInteractive answers every prompt from AutoYes instead of reading
	// the terminal. Concurrent workers must use this mode: blocking reads
	// from a shared terminal are not well-defined.
	NonInteractive bool

	In  io.Reader
	Out io.Writer
	Log *slog.Logger
}

// New returns a Runner wired to the process stdio.
func New(autoYes, dryRun bool, log *slog.Logger) *Runner {
	return &Runner{
		AutoYes: autoYes,
		DryRun:  dryRun,
		In:      os.Stdin,
		Out:     os.Stdout,
		Log:     log,
	}
}

// Unattended returns a copy of r that never reads the terminal.
func (r *Runner) Unattended() *Runner {
	c := *r
	c.NonInteractive = true
	return &c
}

// Run executes c. Dry-run mode logs the command and returns before any
// confirmation prompt. A declined prompt aborts with apperr.ErrAborted.
func (r *Runner) Run(ctx context.Context, c Cmd) error {
	argv := strings.Join(c.Argv, " ")

	if r.DryRun {
		r.Log.Info("dry-run: skipping command", slog.String("argv", argv))
		return nil
	}

	if c.Prompt != "" && !r.AutoYes {
		if r.NonInteractive {
			return fmt.Errorf("runner: %s: confirmation required: %w", c.Prompt, apperr.ErrAborted)
		}
		ok, err := r.confirm(c.Prompt)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("runner: %s: %w", c.Prompt, apperr.ErrAborted)
		}
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.Log.Debug("running command", slog.String("argv", argv), slog.String("dir", c.Dir))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("runner: command %q failed: %w", argv, err)
	}
	return nil
}

// Installed reports whether the native package manager has pkg installed.
// The probe is read-only and runs even in dry-run mode.
func (r *Runner) Installed(ctx context.Context, pkg string) bool {
	cmd := exec.CommandContext(ctx, "pacman", "-Qi", pkg)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run() == nil
}

func (r *Runner) confirm(prompt string) (bool, error) {
	fmt.Fprintf(r.Out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(r.In).ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("runner: read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

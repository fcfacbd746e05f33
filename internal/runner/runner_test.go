package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/raido/internal/apperr"
)

func testRunner() *Runner {
	return &Runner{
		In:  strings.NewReader(""),
		Out: io.Discard,
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRun_DryRunShortCircuitsBeforePrompt(t *testing.T) {
	var out bytes.Buffer
	r := testRunner()
	r.DryRun = true
	r.In = strings.NewReader("n\n")
	r.Out = &out

	err := r.Run(context.Background(), Cmd{
		Argv:   []string{"/definitely/not/a/command"},
		Prompt: "Proceed?",
	})
	if err != nil {
		t.Fatalf("dry-run should succeed without executing: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("dry-run must not prompt, wrote %q", out.String())
	}
}

func TestRun_DeclinedPromptAborts(t *testing.T) {
	r := testRunner()
	r.In = strings.NewReader("n\n")

	err := r.Run(context.Background(), Cmd{Argv: []string{"true"}, Prompt: "Proceed?"})
	if !errors.Is(err, apperr.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRun_ConfirmedPromptExecutes(t *testing.T) {
	var out bytes.Buffer
	r := testRunner()
	r.In = strings.NewReader("y\n")
	r.Out = &out

	if err := r.Run(context.Background(), Cmd{Argv: []string{"true"}, Prompt: "Proceed?"}); err != nil {
		t.Fatalf("confirmed run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Proceed?") {
		t.Errorf("prompt not written: %q", out.String())
	}
}

func TestRun_AutoYesSkipsPrompt(t *testing.T) {
	r := testRunner()
	r.AutoYes = true

	// In is empty: any read attempt would fail the run.
	if err := r.Run(context.Background(), Cmd{Argv: []string{"true"}, Prompt: "Proceed?"}); err != nil {
		t.Fatalf("auto-yes run failed: %v", err)
	}
}

func TestRun_NonInteractiveResolvesPromptFromAutoYes(t *testing.T) {
	r := testRunner()
	r.NonInteractive = true

	err := r.Run(context.Background(), Cmd{Argv: []string{"true"}, Prompt: "Proceed?"})
	if !errors.Is(err, apperr.ErrAborted) {
		t.Fatalf("non-interactive without auto-yes should abort, got %v", err)
	}

	r = testRunner()
	r.NonInteractive = true
	r.AutoYes = true
	if err := r.Run(context.Background(), Cmd{Argv: []string{"true"}, Prompt: "Proceed?"}); err != nil {
		t.Fatalf("non-interactive with auto-yes should run: %v", err)
	}
}

func TestRun_CommandFailureSurfacesArgv(t *testing.T) {
	r := testRunner()
	err := r.Run(context.Background(), Cmd{Argv: []string{"false"}})
	if err == nil {
		t.Fatal("expected failure for exit 1")
	}
	if !strings.Contains(err.Error(), "false") {
		t.Errorf("error should name the command: %v", err)
	}
}

func TestRun_EnvInjection(t *testing.T) {
	r := testRunner()
	err := r.Run(context.Background(), Cmd{
		Argv: []string{"sh", "-c", `test "$RAIDO_TEST_FLAG" = "1"`},
		Env:  []string{"RAIDO_TEST_FLAG=1"},
	})
	if err != nil {
		t.Fatalf("injected env not visible to child: %v", err)
	}
}

func TestUnattended(t *testing.T) {
	r := testRunner()
	u := r.Unattended()
	if !u.NonInteractive {
		t.Error("Unattended copy should be non-interactive")
	}
	if r.NonInteractive {
		t.Error("original runner must be unchanged")
	}
}

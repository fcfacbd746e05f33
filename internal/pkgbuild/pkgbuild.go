// Package pkgbuild extracts dependency declarations from build recipes and
// reconciles them against locally installed packages.
package pkgbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/runner"
)

// RecipeFile is the conventional build recipe file name.
const RecipeFile = "PKGBUILD"

var dependsRe = regexp.MustCompile(`(?s)\bdepends=\(([^)]*)\)`)

// Dependencies extracts the declared runtime dependencies from recipe
// content. A missing depends field simply means no declared dependencies.
// Quotes and version constraints are stripped from each name.
func Dependencies(data []byte) []string {
	m := dependsRe.FindSubmatch(data)
	if m == nil {
		return nil
	}
	fields := strings.FieldsFunc(string(m[1]), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
	})
	var deps []string
	for _, f := range fields {
		name := strings.Trim(f, `"'`)
		if i := strings.IndexAny(name, "<>="); i >= 0 {
			name = name[:i]
		}
		if name == "" {
			continue
		}
		deps = append(deps, name)
	}
	return deps
}

// Runner abstracts command execution for dependency installation.
type Runner interface {
	Run(ctx context.Context, c runner.Cmd) error
}

// Checker diffs a recipe's declared dependencies against the local system
// and installs the missing ones in one batch.
type Checker struct {
	Runner    Runner
	Installed func(ctx context.Context, name string) bool
}

// Missing returns the subset of deps not installed locally, preserving order.
func (c *Checker) Missing(ctx context.Context, deps []string) []string {
	var missing []string
	for _, d := range deps {
		if !c.Installed(ctx, d) {
			missing = append(missing, d)
		}
	}
	return missing
}

// CheckAndInstall reads the recipe in dir and installs any missing declared
// dependencies via the native package manager. Declining the confirmation
// aborts the enclosing build.
func (c *Checker) CheckAndInstall(ctx context.Context, dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, RecipeFile))
	if err != nil {
		return fmt.Errorf("pkgbuild: read recipe: %w", err)
	}
	deps := Dependencies(data)
	if len(deps) == 0 {
		return nil
	}
	missing := c.Missing(ctx, deps)
	if len(missing) == 0 {
		return nil
	}
	argv := append([]string{"sudo", "pacman", "-S", "--needed"}, missing...)
	return c.Runner.Run(ctx, runner.Cmd{
		Argv:   argv,
		Prompt: fmt.Sprintf("Install missing dependencies (%s)?", strings.Join(missing, ", ")),
	})
}

// Package schedule generates and installs the systemd units and the pacman
// post-transaction hook that trigger unattended updates.
package schedule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/raido/internal/runner"
)

// Unit file names registered with the user-scope service manager.
const (
	ServiceUnitName = "raido-update.service"
	TimerUnitName   = "raido-update.timer"
)

// ServiceUnit returns the oneshot service unit invoking `execPath update`.
func ServiceUnit(execPath string) string {
	return fmt.Sprintf(`[Unit]
Description=Raido AUR update

[Service]
Type=oneshot
ExecStart=%s update
`, execPath)
}

// TimerUnit returns the weekly timer unit. Persistent=true catches up on
// runs missed while the machine was off.
func TimerUnit() string {
	return `[Unit]
Description=Weekly Raido AUR update

[Timer]
OnCalendar=weekly
Persistent=true

[Install]
WantedBy=timers.target
`
}

// PacmanHook returns a post-transaction hook running `execPath update`
// after every package upgrade.
func PacmanHook(execPath string) string {
	return fmt.Sprintf(`[Trigger]
Operation = Upgrade
Type = Package
Target = *

[Action]
Description = Raido post-upgrade AUR update
When = PostTransaction
Exec = %s update
`, execPath)
}

// Runner abstracts command execution for service-manager registration.
type Runner interface {
	Run(ctx context.Context, c runner.Cmd) error
}

// Installer writes scheduling artifacts and registers them.
type Installer struct {
	UnitDir  string
	HookPath string
	Runner   Runner
	Euid     func() int
}

// NewInstaller returns an Installer for the given locations.
func NewInstaller(unitDir, hookPath string, r Runner) *Installer {
	return &Installer{UnitDir: unitDir, HookPath: hookPath, Runner: r, Euid: os.Geteuid}
}

// EnableTimer writes the service and timer units, then reloads, enables,
// and starts the timer in the user-scope service manager.
func (i *Installer) EnableTimer(ctx context.Context, execPath string) error {
	if err := os.MkdirAll(i.UnitDir, 0o755); err != nil {
		return fmt.Errorf("schedule: create unit dir: %w", err)
	}
	units := []struct {
		name, body string
	}{
		{ServiceUnitName, ServiceUnit(execPath)},
		{TimerUnitName, TimerUnit()},
	}
	for _, u := range units {
		if err := os.WriteFile(filepath.Join(i.UnitDir, u.name), []byte(u.body), 0o644); err != nil {
			return fmt.Errorf("schedule: write %s: %w", u.name, err)
		}
	}
	for _, argv := range [][]string{
		{"systemctl", "--user", "daemon-reload"},
		{"systemctl", "--user", "enable", TimerUnitName},
		{"systemctl", "--user", "start", TimerUnitName},
	} {
		if err := i.Runner.Run(ctx, runner.Cmd{Argv: argv}); err != nil {
			return err
		}
	}
	return nil
}

// InstallHook writes the pacman hook file. The privilege check runs before
// any filesystem mutation.
func (i *Installer) InstallHook(execPath string) error {
	if i.Euid() != 0 {
		return fmt.Errorf("schedule: installing the pacman hook requires root")
	}
	if err := os.MkdirAll(filepath.Dir(i.HookPath), 0o755); err != nil {
		return fmt.Errorf("schedule: create hook dir: %w", err)
	}
	if err := os.WriteFile(i.HookPath, []byte(PacmanHook(execPath)), 0o644); err != nil {
		return fmt.Errorf("schedule: write hook: %w", err)
	}
	return nil
}

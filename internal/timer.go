package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/raido/internal/schedule"
)

// EnableTimer installs the weekly update timer in the user-scope service
// manager and starts it.
func (a *App) EnableTimer(ctx context.Context) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	inst := schedule.NewInstaller(a.paths.UnitDir, a.paths.HookFile, a.run)
	if err := inst.EnableTimer(ctx, exe); err != nil {
		return err
	}
	a.log.Info("update timer enabled", slog.String("unit", schedule.TimerUnitName))
	return nil
}

// InstallHook installs the pacman post-transaction hook. Requires root.
func (a *App) InstallHook() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	inst := schedule.NewInstaller(a.paths.UnitDir, a.paths.HookFile, a.run)
	if err := inst.InstallHook(exe); err != nil {
		return err
	}
	a.log.Info("pacman hook installed", slog.String("path", a.paths.HookFile))
	return nil
}

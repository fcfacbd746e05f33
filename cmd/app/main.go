package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
)

var (
	verbose bool
	dryRun  bool
)

func main() {
	cmd := &cli.Command{
		Name:  "raido",
		Usage: "Build, install, and track AUR packages",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "Enable debug logging",
				Destination: &verbose,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Log external commands instead of executing them",
				Destination: &dryRun,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "install",
				Usage:     "Clone, build, and install an AUR package",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip confirmations"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return fmt.Errorf("install: package name is required")
					}
					return withApp(func(app *internal.App) error {
						return app.Install(ctx, name, internal.InstallOptions{AssumeYes: cmd.Bool("yes")})
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Uninstall a package and drop it from tracking",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return fmt.Errorf("remove: package name is required")
					}
					return withApp(func(app *internal.App) error {
						return app.Remove(ctx, name)
					})
				},
			},
			{
				Name:      "search",
				Usage:     "Search the AUR for packages matching a term",
				ArgsUsage: "<term>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Max results to show"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					term := cmd.Args().First()
					if term == "" {
						return fmt.Errorf("search: term is required")
					}
					return withApp(func(app *internal.App) error {
						return app.Search(ctx, term, int(cmd.Int("limit")))
					})
				},
			},
			{
				Name:  "status",
				Usage: "Report version drift against upstream",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Usage: "Show every tracked package, even when up to date"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(func(app *internal.App) error {
						return app.Status(ctx, cmd.Bool("all"))
					})
				},
			},
			{
				Name:  "update",
				Usage: "Rebuild every stale, non-cooling-down package",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return withApp(func(app *internal.App) error {
						return app.Update(ctx)
					})
				},
			},
			{
				Name:  "purge_cache",
				Usage: "Delete all cached AUR metadata",
				Action: func(_ context.Context, _ *cli.Command) error {
					return withApp(func(app *internal.App) error {
						return app.PurgeCache()
					})
				},
			},
			{
				Name:  "enable_timer",
				Usage: "Install and start the weekly update timer",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return withApp(func(app *internal.App) error {
						return app.EnableTimer(ctx)
					})
				},
			},
			{
				Name:  "install_hook",
				Usage: "Install the pacman post-upgrade hook (requires root)",
				Action: func(_ context.Context, _ *cli.Command) error {
					return withApp(func(app *internal.App) error {
						return app.InstallHook()
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// withApp builds the application context for one command run and releases
// the ledger handle afterwards.
func withApp(fn func(*internal.App) error) error {
	setupLogger(verbose)
	app, err := internal.New(internal.WithDryRun(dryRun))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))
}

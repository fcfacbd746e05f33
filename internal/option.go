package internal

// Option is a functional option for configuring the application.
type Option func(*App)

// WithConfig sets pre-loaded settings, skipping the config file.
func WithConfig(cfg *Config) Option {
	return func(a *App) {
		a.cfg = cfg
	}
}

// WithPaths overrides the resolved per-user paths.
func WithPaths(p Paths) Option {
	return func(a *App) {
		a.paths = p
	}
}

// WithDryRun suppresses every external command execution.
func WithDryRun(dryRun bool) Option {
	return func(a *App) {
		a.dryRun = dryRun
	}
}

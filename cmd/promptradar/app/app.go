// Package app provides the application context and dependency management
// for the promptradar CLI: configuration, logging, and the lazily created
// radar client shared by commands.
package app

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/promptradar"
	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/metrics"
	"github.com/agentstation/promptradar/pkg/store"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the promptradar application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config  *Config
	logger  *zerolog.Logger
	metrics *metrics.Metrics

	// Radar instance (lazy-initialized, singleton)
	mu    sync.RWMutex
	radar promptradar.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		metrics: metrics.New(),
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config, os.Stderr)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Metrics returns the registry the default radar records into.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

// ToolsFile returns the configured tools file path.
func (a *App) ToolsFile() string {
	return a.config.ToolsFile
}

// MetricsFile returns the metrics export path, or "".
func (a *App) MetricsFile() string {
	return a.config.MetricsFile
}

// Radar returns the radar client. Without options the instance is created
// once and cached; with options a new, uncached instance is returned and the
// caller must close it.
func (a *App) Radar(opts ...promptradar.Option) (promptradar.Client, error) {
	if len(opts) > 0 {
		if err := a.config.Validate(); err != nil {
			return nil, err
		}
		radar, err := promptradar.New(append(a.radarOptions(), opts...)...)
		if err != nil {
			return nil, errors.WrapResource("create", "radar", "with custom options", err)
		}
		return radar, nil
	}

	a.mu.RLock()
	if a.radar != nil {
		radar := a.radar
		a.mu.RUnlock()
		return radar, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.radar != nil {
		return a.radar, nil
	}

	if err := a.config.Validate(); err != nil {
		return nil, err
	}
	radar, err := promptradar.New(a.radarOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "radar", "", err)
	}

	a.radar = radar
	return radar, nil
}

// radarOptions constructs client options from the app configuration.
func (a *App) radarOptions() []promptradar.Option {
	return []promptradar.Option{
		promptradar.WithToolsFile(a.config.ToolsFile),
		promptradar.WithDataDir(a.config.DataDir),
		promptradar.WithStoreBackend(store.Backend(a.config.Store)),
		promptradar.WithFetchTimeout(a.config.FetchTimeout),
		promptradar.WithUserAgent(a.config.UserAgent),
		promptradar.WithConcurrency(a.config.Concurrency),
		promptradar.WithMetrics(a.metrics),
	}
}

// Shutdown releases the radar client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	radar := a.radar
	a.radar = nil
	a.mu.Unlock()

	if radar == nil {
		return nil
	}
	if err := radar.Close(); err != nil {
		return errors.WrapResource("close", "radar", "", err)
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithRadar sets a custom radar instance (useful for testing).
func WithRadar(radar promptradar.Client) Option {
	return func(a *App) error {
		a.radar = radar
		return nil
	}
}

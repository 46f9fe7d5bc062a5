// Package application provides the application interface for promptradar commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            radar, err := app.Radar()
//	            if err != nil {
//	                return err
//	            }
//	            current, err := radar.Current(cmd.Context())
//	            // ... render current
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    RadarFunc: func(opts ...promptradar.Option) (promptradar.Client, error) {
//	        return promptradar.New(promptradar.WithTools(tools), promptradar.WithStore(memory.New()))
//	    },
//	}
//	cmd := NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/promptradar"
	"github.com/agentstation/promptradar/pkg/metrics"
)

// Application provides the application interface that commands need.
// The App struct from cmd/promptradar/app implements it.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Radar returns the radar client. Without options it returns the
	// default cached instance; with options it creates a new one.
	Radar(opts ...promptradar.Option) (promptradar.Client, error)

	// Metrics returns the registry the default radar records into.
	Metrics() *metrics.Metrics

	// ToolsFile returns the configured tools file path.
	ToolsFile() string

	// MetricsFile returns the path run metrics are exported to, or "".
	MetricsFile() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/promptradar/cmd/promptradar/cmd/completion"
	"github.com/agentstation/promptradar/cmd/promptradar/cmd/history"
	"github.com/agentstation/promptradar/cmd/promptradar/cmd/report"
	"github.com/agentstation/promptradar/cmd/promptradar/cmd/status"
	"github.com/agentstation/promptradar/cmd/promptradar/cmd/update"
	"github.com/agentstation/promptradar/cmd/promptradar/cmd/validate"
	"github.com/agentstation/promptradar/cmd/promptradar/cmd/version"
	"github.com/agentstation/promptradar/pkg/logging"
)

// Execute runs the promptradar CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "promptradar",
		Short:   "Track changes to AI coding tool system prompts",
		Version: a.version,
		Long: `Prompt Radar watches the published system prompts of AI coding tools.

Each tool lists candidate sources (raw files, documentation pages, gists,
search hints). Every run fetches them, scores the content by source trust,
weight and size, and records a change whenever the most trustworthy content
differs from the last known one.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Flag defaults come from the loaded configuration so unset flags keep it.
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "settings file (default is ./.promptradar.yaml or $HOME/.promptradar.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "output", "o", a.config.Format, "output format: table, json, yaml")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVar(&a.config.ToolsFile, "tools", a.config.ToolsFile, "tools configuration file")
	flags.StringVar(&a.config.DataDir, "data-dir", a.config.DataDir, "directory for snapshot documents")
	flags.StringVar(&a.config.Store, "store", a.config.Store, "snapshot store: files, sqlite, bolt")
	flags.DurationVar(&a.config.FetchTimeout, "fetch-timeout", a.config.FetchTimeout, "timeout for each source fetch")
	flags.IntVar(&a.config.Concurrency, "concurrency", a.config.Concurrency, "tools reconciled at once")
	flags.StringVar(&a.config.UserAgent, "user-agent", a.config.UserAgent, "User-Agent header sent to sources")
	flags.StringVar(&a.config.MetricsFile, "metrics-file", a.config.MetricsFile, "write Prometheus metrics to this file after update")

	rootCmd.SetVersionTemplate("promptradar {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// An explicit settings file is read now; flags given on the command line
	// are then applied on top of it.
	if cmd.Flags().Changed("config") {
		if err := a.reloadConfig(cmd.Flags()); err != nil {
			return err
		}
	}

	logger := NewLogger(a.config, cmd.ErrOrStderr())
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	return nil
}

func (a *App) reloadConfig(flags *pflag.FlagSet) error {
	changed := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	config, err := LoadConfig(a.config.ConfigFile)
	if err != nil {
		return err
	}
	*a.config = *config

	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(update.NewCommand(a))
	rootCmd.AddCommand(report.NewCommand(a))
	rootCmd.AddCommand(status.NewCommand(a))
	rootCmd.AddCommand(history.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(validate.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// Package update implements the update command: one radar run.
package update

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/promptradar"
	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/internal/cmd/output"
	"github.com/agentstation/promptradar/pkg/constants"
	"github.com/agentstation/promptradar/pkg/reconciler"
	"github.com/agentstation/promptradar/pkg/report"
)

// Flags holds the update command flags.
type Flags struct {
	DryRun  bool
	Timeout time.Duration
	Changes bool
}

// NewCommand creates the update command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "update",
		GroupID: "core",
		Short:   "Fetch every source and record prompt changes",
		Args:    cobra.NoArgs,
		Long: `Update performs one radar run over the configured tools:

1. Fetch every candidate source of every tool
2. Normalize, score and deduplicate the fetched content
3. Select the most trustworthy candidate per tool
4. Compare it with the stored state and record changes

Tools whose sources all fail keep their previous snapshot. The current
snapshot, the change history and the latest changes are written to the
data directory unless --dry-run is given.`,
		Example: `  promptradar update                 # Run and persist
  promptradar update --dry-run       # Show what would change
  promptradar update --changes       # Also list the detected changes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "compute the run without writing documents")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", constants.CommandTimeout, "bound the whole run (0 disables)")
	cmd.Flags().BoolVar(&flags.Changes, "changes", false, "list detected changes after the summary")

	return cmd
}

// Execute runs the update command.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()
	logger := app.Logger()

	radar, err := app.Radar()
	if err != nil {
		return err
	}

	result, err := radar.Update(ctx,
		promptradar.WithDryRun(flags.DryRun),
		promptradar.WithUpdateTimeout(flags.Timeout),
	)
	if err != nil {
		return err
	}

	if path := app.MetricsFile(); path != "" {
		if err := app.Metrics().WriteTextfile(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to write metrics file")
		} else {
			logger.Debug().Str("path", path).Msg("Wrote metrics file")
		}
	}

	return printSummary(cmd.OutOrStdout(), result, flags.Changes)
}

func printSummary(w io.Writer, result *reconciler.Result, listChanges bool) error {
	verb := "Updated"
	if result.DryRun {
		verb = "Dry run of"
	}
	stamp := result.GeneratedAt.Time.UTC().Format(report.TimeLayout)
	if _, err := fmt.Fprintf(w, "%s prompt radar at %s\n", verb, stamp); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Detected %d change(s).\n", len(result.Changes())); err != nil {
		return err
	}

	tally := result.Tally()
	if tally.Fallback > 0 || tally.Unavailable > 0 {
		if _, err := fmt.Fprintf(w, "Fallback used: %d, unavailable: %d\n", tally.Fallback, tally.Unavailable); err != nil {
			return err
		}
	}

	if listChanges && len(result.Changes()) > 0 {
		return output.NewFormatter(output.FormatTable).Format(w, output.ChangesTable(result.Changes()))
	}
	return nil
}

// Package report implements the report command.
package report

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/internal/cmd/output"
	"github.com/agentstation/promptradar/pkg/report"
)

// NewCommand creates the report command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "report",
		GroupID: "core",
		Short:   "Summarize the latest run",
		Args:    cobra.NoArgs,
		Long: `Report prints the changes detected by the latest run and how many
tracked tools are served from a fallback or are unavailable.`,
		Example: `  promptradar report
  promptradar report -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}

			radar, err := app.Radar()
			if err != nil {
				return err
			}
			latest, err := radar.Latest(cmd.Context())
			if err != nil {
				return err
			}
			current, err := radar.Current(cmd.Context())
			if err != nil {
				return err
			}

			r := report.New(latest, current)
			if format == output.FormatTable {
				return r.Write(cmd.OutOrStdout())
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), r)
		},
	}
}

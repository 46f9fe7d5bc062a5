// Package status implements the status command.
package status

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/internal/cmd/output"
)

// NewCommand creates the status command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: "core",
		Short:   "Show the stored state of every tool",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}

			radar, err := app.Radar()
			if err != nil {
				return err
			}
			current, err := radar.Current(cmd.Context())
			if err != nil {
				return err
			}

			rows := output.StatusRows(current)
			return output.Render(cmd.OutOrStdout(), format, rows, output.StatusTable(rows))
		},
	}
}

// Package history implements the history command.
package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/internal/cmd/output"
	"github.com/agentstation/promptradar/pkg/config"
	"github.com/agentstation/promptradar/pkg/errors"
	"github.com/agentstation/promptradar/pkg/snapshots"
)

// NewCommand creates the history command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history <tool-id>",
		GroupID: "core",
		Short:   "Show the recorded prompt changes of a tool",
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			radar, err := app.Radar()
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			ids := make([]string, 0, len(radar.Tools()))
			for _, tool := range radar.Tools() {
				ids = append(ids, tool.ID+"\t"+tool.Name)
			}
			return ids, cobra.ShellCompDirectiveNoFileComp
		},
		Example: `  promptradar history cursor
  promptradar history cursor --limit 5 -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}

			radar, err := app.Radar()
			if err != nil {
				return err
			}
			history, err := radar.History(cmd.Context())
			if err != nil {
				return err
			}

			// tools dropped from the configuration keep their history
			toolID := args[0]
			records, recorded := history.Tools[toolID]
			tools := config.Tools{Tools: radar.Tools()}
			if _, known := tools.Find(toolID); !recorded && !known {
				return &errors.NotFoundError{Resource: "tool", ID: toolID}
			}
			if records == nil {
				records = []snapshots.ChangeRecord{}
			}
			if limit > 0 && len(records) > limit {
				records = records[len(records)-limit:]
			}

			if format == output.FormatTable && len(records) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "No changes recorded for %s.\n", toolID)
				return err
			}
			return output.Render(cmd.OutOrStdout(), format, records, output.ChangesTable(records))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent N changes")

	return cmd
}

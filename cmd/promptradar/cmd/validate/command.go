// Package validate implements the validate command.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/internal/cmd/output"
	"github.com/agentstation/promptradar/pkg/config"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "validate [tools-file]",
		GroupID: "management",
		Short:   "Validate the tools configuration file",
		Args:    cobra.MaximumNArgs(1),
		Long: `Validate loads the tools file and checks that every tool has a unique id
and a name, and that every source has an http(s) URL and a weight between 0
and 1. Unknown source types and tools without sources are reported as
warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.Resolve(app.OutputFormat())
			if err != nil {
				return err
			}

			path := app.ToolsFile()
			if len(args) == 1 {
				path = args[0]
			}

			cfg, warnings, err := config.LoadAndValidate(path)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format != output.FormatTable {
				return output.NewFormatter(format).Format(w, Result{
					File:     path,
					Tools:    len(cfg.Tools),
					Sources:  countSources(cfg),
					Warnings: append([]string{}, warnings...),
				})
			}

			for _, warning := range warnings {
				if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%s is valid: %d tool(s), %d source(s).\n", path, len(cfg.Tools), countSources(cfg)); err != nil {
				return err
			}
			return output.NewFormatter(format).Format(w, output.ToolsTable(cfg.Tools))
		},
	}
}

// Result is the machine-readable outcome of a successful validation.
type Result struct {
	File     string   `json:"file" yaml:"file"`
	Tools    int      `json:"tools" yaml:"tools"`
	Sources  int      `json:"sources" yaml:"sources"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

func countSources(cfg *config.Tools) int {
	n := 0
	for _, t := range cfg.Tools {
		n += len(t.Sources)
	}
	return n
}

// Package completion implements the completion command.
package completion

import (
	"github.com/spf13/cobra"
)

// NewCommand creates the completion command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:

  $ source <(promptradar completion bash)

  # To load completions for each session, execute once:
  $ promptradar completion bash > /etc/bash_completion.d/promptradar

Zsh:

  $ promptradar completion zsh > "${fpath[1]}/_promptradar"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ promptradar completion fish > ~/.config/fish/completions/promptradar.fish

PowerShell:

  PS> promptradar completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

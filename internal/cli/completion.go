package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print shell completions for todo",
	Long: `Print a shell tab-completion script for todo commands, flags, and task
references.

Supported shells: bash, zsh, fish, powershell

  eval "$(todo completion bash)"
  eval "$(todo completion zsh)"
  todo completion fish | source
  todo completion powershell | Out-String | Invoke-Expression`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	Annotations: map[string]string{
		annotationNoServices: "true",
	},
	RunE: runCompletion,
}

func init() {
	// Remove Cobra's default completion command and add ours.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}
}

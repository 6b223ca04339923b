package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// detectShell guesses the user's shell from $SHELL, falling back to bash.
func detectShell() string {
	switch name := strings.ToLower(filepath.Base(os.Getenv("SHELL"))); {
	case strings.Contains(name, "fish"):
		return "fish"
	case strings.Contains(name, "zsh"):
		return "zsh"
	case strings.Contains(name, "pwsh"), strings.Contains(name, "powershell"):
		return "powershell"
	}
	return "bash"
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for jobbers.

Without an argument the shell is taken from $SHELL.

Bash:
  $ source <(jobbers completion bash)

Zsh:
  $ jobbers completion zsh > "${fpath[1]}/_jobbers"

Fish:
  $ jobbers completion fish > ~/.config/fish/completions/jobbers.fish

PowerShell:
  PS> jobbers completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := detectShell()
		if len(args) > 0 {
			shell = args[0]
		}

		root := cmd.Root()
		out := cmd.OutOrStdout()
		switch shell {
		case "bash":
			return root.GenBashCompletionV2(out, true)
		case "zsh":
			return root.GenZshCompletion(out)
		case "fish":
			return root.GenFishCompletion(out, true)
		case "powershell":
			return root.GenPowerShellCompletionWithDesc(out)
		}
		return fmt.Errorf("unsupported shell: %s", shell)
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

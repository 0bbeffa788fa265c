package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(completionCmd)
}

var completionGenerators = map[string]func(*cobra.Command, io.Writer) error{
	"bash": func(c *cobra.Command, w io.Writer) error { return c.Root().GenBashCompletion(w) },
	"zsh":  func(c *cobra.Command, w io.Writer) error { return c.Root().GenZshCompletion(w) },
	"fish": func(c *cobra.Command, w io.Writer) error { return c.Root().GenFishCompletion(w, true) },
	"powershell": func(c *cobra.Command, w io.Writer) error {
		return c.Root().GenPowerShellCompletionWithDesc(w)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a shell completion script for dockrun.

Bash:
  $ source <(dockrun completion bash)

Zsh:
  $ dockrun completion zsh > "${fpath[1]}/_dockrun"

Fish:
  $ dockrun completion fish | source

PowerShell:
  PS> dockrun completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return completionGenerators[args[0]](cmd, os.Stdout)
	},
}

package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for copper.

To load completions:

Bash:
  $ source <(copper completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ copper completion bash > /etc/bash_completion.d/copper
  # macOS:
  $ copper completion bash > $(brew --prefix)/etc/bash_completion.d/copper

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ copper completion zsh > "${fpath[1]}/_copper"

  # You will need to start a new shell for this setup to take effect.

Flags such as --net and --pin complete from the design named on the
command line.

Fish:
  $ copper completion fish | source

  # To load completions for each session, execute once:
  $ copper completion fish > ~/.config/fish/completions/copper.fish

PowerShell:
  PS> copper completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> copper completion powershell > copper.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeDesignFiles restricts the first positional argument to TOML files.
func completeDesignFiles(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeNets lists the nets of the design given as the first argument.
func completeNets(_ *cobra.Command, args []string, prefix string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	d, err := designio.Load(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, n := range d.Netlist.Nets() {
		if strings.HasPrefix(string(n.Name), prefix) {
			out = append(out, string(n.Name))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePins lists REF.PIN references of the design given as the first
// argument.
func completePins(_ *cobra.Command, args []string, prefix string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	d, err := designio.Load(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, c := range d.Netlist.Components() {
		for _, p := range c.Pins {
			ref := c.Ref + "." + p.Number
			if strings.HasPrefix(ref, prefix) {
				out = append(out, ref)
			}
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats lists the ratsnest output formats.
func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
}

package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/townsquare/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for townsquare.

Bash:
  $ source <(townsquare completion bash)

Zsh (with compinit enabled):
  $ townsquare completion zsh > "${fpath[1]}/_townsquare"

Fish:
  $ townsquare completion fish > ~/.config/fish/completions/townsquare.fish

PowerShell:
  PS> townsquare completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// completeFormats completes a comma-separated --format value, offering only
// the formats not yet listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, last = toComplete[:i+1], toComplete[i+1:]
	}
	chosen := parseFormats(prefix)
	if prefix == "" {
		chosen = nil
	}

	var out []string
	for _, f := range pipeline.Formats {
		if strings.HasPrefix(f, last) && !slices.Contains(chosen, f) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeGraphOutput completes files the stacking graph can be rendered to.
func completeGraphOutput(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"svg", "png", "pdf", "dot", "gv"}, cobra.ShellCompDirectiveFilterFileExt
}

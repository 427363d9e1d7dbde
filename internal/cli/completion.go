package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/skillpulse/internal/core"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print shell completions for pulse",
	Long: `Print the tab-completion script for pulse commands, flags, and task IDs.

Supported shells: bash, zsh, fish, powershell

  eval "$(pulse completion bash)"
  eval "$(pulse completion zsh)"
  pulse completion fish | source`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
	},
}

// completeTaskIDs offers the IDs of the first page of the logged-in user's
// tasks. Anything that goes wrong yields no suggestions.
func completeTaskIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || requireTaskServices() != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	list := core.NewTaskList(DB, Auth, Logger, PageLimit)
	defer list.Close()
	if err := loadTasks(list, false); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, t := range list.State().Tasks {
		if strings.HasPrefix(t.ID, toComplete) {
			ids = append(ids, t.ID+"\t"+t.Description)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	taskEditCmd.ValidArgsFunction = completeTaskIDs
	taskDeleteCmd.ValidArgsFunction = completeTaskIDs

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/present"
	"github.com/mithrel/inkwell/internal/util"
	"github.com/mithrel/inkwell/internal/wire"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "completion",
		Short:       "Generate shell completion scripts",
		Annotations: noApp,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate Bash completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate Zsh completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate Fish completions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})

	return cmd
}

func completeDocFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, 0, len(present.DocFormats))
	for _, f := range present.DocFormats {
		out = append(out, string(f))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completePrompts offers previous prompts from history, fuzzy ranked.
func completePrompts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if cmd.Context() == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	app, ok := cmd.Context().Value(appKey).(*wire.App)
	if !ok {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	prompts, err := app.Store.Posts.Prompts(cmd.Context(), 200)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return util.ScoreCompletions(toComplete, prompts, 20), cobra.ShellCompDirectiveNoFileComp
}

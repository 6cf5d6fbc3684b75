package cli

import (
	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/present/tui"
)

func newTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			gen, err := app.Generator()
			if err != nil {
				return err
			}
			return tui.RunShell(cmd.Context(), app.SessionOptions(gen, nil))
		},
	}
	cmd.Flags().String("provider", "", "override generator.provider")
	cmd.Flags().String("model", "", "override generator.model")
	return cmd
}

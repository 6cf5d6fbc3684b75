package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/editor"
	"github.com/mithrel/inkwell/internal/present"
	"github.com/mithrel/inkwell/internal/shell"
)

func newGenerateCmd() *cobra.Command {
	var (
		edit    bool
		formatS string
		copyRaw bool
		outPath string
	)
	cmd := &cobra.Command{
		Use:               "generate [topic...]",
		Aliases:           []string{"gen"},
		Short:             "Generate a post about a topic and render it",
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: completePrompts,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			topic := strings.Join(args, " ")
			if edit || (strings.TrimSpace(topic) == "" && isTerminal(cmd.InOrStdin())) {
				recent, _ := app.Store.Posts.Prompts(cmd.Context(), 10)
				edited, err := editor.EditPrompt(topic, recent)
				if err != nil {
					return err
				}
				topic = edited
			}
			if strings.TrimSpace(topic) == "" {
				return errors.New("a topic is required")
			}

			out, err := openOutput(cmd, outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			f, err := parseDocFormat(formatS, out)
			if err != nil {
				return err
			}

			sess, err := app.NewSession(nil)
			if err != nil {
				return err
			}
			done, _ := sess.Submit(cmd.Context(), topic)
			var st shell.State
			select {
			case st = <-done:
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
			switch st := st.(type) {
			case shell.Failed:
				return errors.New(st.Message)
			case shell.Ready:
				if err := present.RenderDocument(out, st.Raw, topic, f, presentOptions(app, out)); err != nil {
					return err
				}
				if copyRaw {
					if err := app.Clipboard.WriteText(st.Raw); err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "Copied raw text to clipboard")
				}
				if st.PostID != "" {
					app.Log.WithField("id", st.PostID).Info("saved to history")
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&edit, "edit", "e", false, "compose the topic in $EDITOR")
	cmd.Flags().BoolVarP(&copyRaw, "copy", "c", false, "copy the raw text to the clipboard")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().String("provider", "", "override generator.provider")
	cmd.Flags().String("model", "", "override generator.model")
	addDocFormatFlag(cmd, &formatS)
	return cmd
}

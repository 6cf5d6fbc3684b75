package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/present"
	"github.com/mithrel/inkwell/internal/watch"
)

const clearScreen = "\x1b[H\x1b[2J"

func newRenderCmd() *cobra.Command {
	var (
		formatS string
		outPath string
		watchF  bool
	)
	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render local markdown without calling a generator",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			if watchF && src == "-" {
				return errors.New("--watch needs a file argument")
			}
			title := "Inkwell"
			if src != "-" {
				title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
			}

			renderOnce := func() error {
				raw, err := readSource(cmd, src)
				if err != nil {
					return err
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
				if watchF && isTerminal(out) {
					_, _ = io.WriteString(out, clearScreen)
				}
				return present.RenderDocument(out, raw, title, f, presentOptions(app, out))
			}

			if err := renderOnce(); err != nil {
				return err
			}
			if !watchF {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (ctrl+c to stop)\n", src)
			return watch.File(ctx, src, 0, app.Log, func() {
				if err := renderOnce(); err != nil {
					app.Log.WithError(err).Warn("re-render failed")
				}
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVarP(&watchF, "watch", "w", false, "re-render whenever the file changes")
	addDocFormatFlag(cmd, &formatS)
	return cmd
}

func readSource(cmd *cobra.Command, src string) (string, error) {
	if src == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}
	return string(b), nil
}

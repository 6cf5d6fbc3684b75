package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/present"
	"github.com/mithrel/inkwell/internal/present/format"
	"github.com/mithrel/inkwell/internal/wire"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// openOutput returns the command's stdout for "" or "-", otherwise a
// newly created file.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

// presentOptions builds presenter options from config for output w.
func presentOptions(app *wire.App, w io.Writer) present.Options {
	return present.Options{
		Headers:  true,
		Sanitize: app.Cfg.GetBool("render.sanitize"),
		Glamour: format.GlamourOptions{
			Style:    app.Cfg.GetString("render.style"),
			WordWrap: app.Cfg.GetInt("render.word_wrap"),
		},
		Width: app.Cfg.GetInt("render.word_wrap"),
		Color: isTerminal(w),
	}
}

// parseDocFormat resolves --format, defaulting to ANSI on a terminal and
// raw text otherwise.
func parseDocFormat(s string, out io.Writer) (present.DocFormat, error) {
	if s == "" {
		if isTerminal(out) {
			return present.DocANSI, nil
		}
		return present.DocRaw, nil
	}
	f, ok := present.ParseDocFormat(strings.ToLower(s))
	if !ok {
		return "", fmt.Errorf("invalid --format %q", s)
	}
	if f == present.DocPDF && isTerminal(out) {
		return "", fmt.Errorf("refusing to write PDF to a terminal; use -o")
	}
	return f, nil
}

func addDocFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", "", "output format: ansi|html|json|markdown|pdf|text|tree|raw (default ansi on a terminal, raw otherwise)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeDocFormats)
}

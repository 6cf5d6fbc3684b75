// Package clipboard writes text to the system clipboard, falling back to an
// OSC 52 terminal escape when no clipboard utility is available.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Writer accepts text for the clipboard.
type Writer interface {
	WriteText(text string) error
}

// ErrUnavailable means neither the system clipboard nor a fallback could be used.
var ErrUnavailable = errors.New("clipboard unavailable")

// System uses the platform clipboard (pbcopy, xclip, wl-copy, ...).
// When OSC52 is set and the platform clipboard is missing or fails, the
// text is sent to Term as an OSC 52 sequence instead.
type System struct {
	OSC52 bool
	Term  io.Writer
}

// New returns a System writer targeting stderr for the OSC 52 fallback.
func New(osc52Fallback bool) *System {
	return &System{OSC52: osc52Fallback, Term: os.Stderr}
}

func (s *System) WriteText(text string) error {
	var sysErr error
	if clipboard.Unsupported {
		sysErr = ErrUnavailable
	} else if sysErr = clipboard.WriteAll(text); sysErr == nil {
		return nil
	}
	if !s.OSC52 || s.Term == nil {
		return fmt.Errorf("write clipboard: %w", sysErr)
	}
	if _, err := osc52.New(text).WriteTo(s.Term); err != nil {
		return fmt.Errorf("write osc52: %w", errors.Join(sysErr, err))
	}
	return nil
}

// Func adapts a plain function to Writer.
type Func func(text string) error

func (f Func) WriteText(text string) error { return f(text) }

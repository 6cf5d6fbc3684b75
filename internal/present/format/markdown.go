package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/inkwell/pkg/api"
)

// GlamourOptions selects the glamour style and wrap width.
type GlamourOptions struct {
	Style    string
	WordWrap int
}

func (o GlamourOptions) renderer() (*glamour.TermRenderer, error) {
	style := o.Style
	if style == "" {
		style = "dracula"
	}
	wrap := o.WordWrap
	if wrap <= 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return r, nil
}

// WriteGlamour renders raw markdown with glamour. It shows the document
// as a full markdown engine would, next to Inkwell's own subset.
func WriteGlamour(w io.Writer, raw string, opts GlamourOptions) error {
	r, err := opts.renderer()
	if err != nil {
		return err
	}
	out, err := r.Render(raw)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// WritePrettyPost renders one history post with a metadata header.
func WritePrettyPost(w io.Writer, p api.Post, opts GlamourOptions) error {
	ts := p.CreatedAt.Local().Format(time.RFC3339)
	md := fmt.Sprintf(`# %s

> **ID:** %s | **Created:** %s
>
> **Prompt:** %s | **Model:** %s/%s

---

%s
`, p.Title(), p.ID, ts, p.Prompt, p.Provider, p.Model, strings.TrimSpace(p.Body))
	return WriteGlamour(w, md, opts)
}

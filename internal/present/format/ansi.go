package format

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mithrel/inkwell/pkg/markup"
)

// ANSIStyles are the lipgloss styles used to draw nodes in a terminal.
type ANSIStyles struct {
	H2, H3, Code, CodeBlock, Strong, Emph, Link, Bullet lipgloss.Style
}

// DefaultANSIStyles mirrors the web page's palette in a terminal.
func DefaultANSIStyles() ANSIStyles {
	return ANSIStyles{
		H2:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		H3:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		Code:      lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
		CodeBlock: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		Strong:    lipgloss.NewStyle().Bold(true),
		Emph:      lipgloss.NewStyle().Italic(true),
		Link:      lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("39")),
		Bullet:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// ANSI renders nodes for a terminal, wrapping paragraphs at width
// columns (0 disables wrapping).
func ANSI(nodes []markup.Node, styles ANSIStyles, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}
	var blocks []string
	for _, n := range nodes {
		switch n := n.(type) {
		case *markup.CodeBlock:
			blocks = append(blocks, styles.CodeBlock.Render(markup.Unescape(n.Text)))
		case *markup.Heading:
			st := styles.H2
			prefix := "## "
			if n.Level == 3 {
				st, prefix = styles.H3, "### "
			}
			blocks = append(blocks, st.Render(prefix+markup.PlainText(n.Inlines)))
		case *markup.List:
			items := make([]string, 0, len(n.Items))
			for _, item := range n.Items {
				items = append(items, styles.Bullet.Render("• ")+ansiInlines(item, styles))
			}
			blocks = append(blocks, wrap.Render(strings.Join(items, "\n")))
		case *markup.Paragraph:
			blocks = append(blocks, wrap.Render(ansiInlines(n.Inlines, styles)))
		case *markup.LineBreak:
			blocks = append(blocks, "")
		}
	}
	return strings.Join(blocks, "\n")
}

func ansiInlines(in []markup.Inline, styles ANSIStyles) string {
	var b strings.Builder
	for _, s := range in {
		switch s := s.(type) {
		case *markup.Text:
			b.WriteString(markup.Unescape(s.Text))
		case *markup.Code:
			b.WriteString(styles.Code.Render(markup.Unescape(s.Text)))
		case *markup.Strong:
			b.WriteString(styles.Strong.Render(markup.PlainText(s.Inlines)))
		case *markup.Emph:
			b.WriteString(styles.Emph.Render(markup.PlainText(s.Inlines)))
		case *markup.Link:
			b.WriteString(styles.Link.Render(markup.PlainText(s.Inlines)))
			b.WriteString(" (" + markup.Unescape(s.Href) + ")")
		}
	}
	return b.String()
}

// WriteANSI writes ANSI(nodes) followed by a newline.
func WriteANSI(w io.Writer, nodes []markup.Node, width int) error {
	if len(nodes) == 0 {
		return nil
	}
	_, err := io.WriteString(w, ANSI(nodes, DefaultANSIStyles(), width)+"\n")
	return err
}

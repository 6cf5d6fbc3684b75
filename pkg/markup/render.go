package markup

import "strings"

// Render converts raw into content nodes. It is total: every input yields
// a result, and an empty input yields no nodes.
func Render(raw string) []Node {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var out []Node
	for _, seg := range Split(raw) {
		if seg.Fenced {
			out = append(out, &CodeBlock{Text: Escape(fencedBody(seg.Source))})
			continue
		}
		out = append(out, assemble(seg.Source)...)
	}
	return out
}

// LineKind classifies one line of a text segment.
type LineKind int

const (
	LineParagraph LineKind = iota
	LineHeading2
	LineHeading3
	LineListItem
	LineBlank
)

// ClassifyLine returns the kind of line and the text that follows its
// marker: the heading text, the list item text, or the whole line.
func ClassifyLine(line string) (LineKind, string) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "### "):
		return LineHeading3, line[len("### "):]
	case strings.HasPrefix(line, "## "):
		return LineHeading2, line[len("## "):]
	case strings.HasPrefix(trimmed, "* "):
		return LineListItem, trimmed[len("* "):]
	case trimmed == "":
		return LineBlank, ""
	default:
		return LineParagraph, line
	}
}

// listBuffer accumulates consecutive list items until a flush point.
type listBuffer []string

// flush appends a List node for any pending items and empties the buffer.
func (b *listBuffer) flush(out []Node) []Node {
	if len(*b) == 0 {
		return out
	}
	items := make([][]Inline, 0, len(*b))
	for _, it := range *b {
		items = append(items, Inlines(it))
	}
	*b = (*b)[:0]
	return append(out, &List{Items: items})
}

// assemble turns one text segment into nodes.
func assemble(src string) []Node {
	if src == "" {
		return nil
	}
	var (
		out     []Node
		pending listBuffer
	)
	for _, line := range strings.Split(src, "\n") {
		kind, text := ClassifyLine(line)
		if kind == LineListItem {
			pending = append(pending, text)
			continue
		}
		out = pending.flush(out)
		switch kind {
		case LineHeading2:
			out = append(out, &Heading{Level: 2, Inlines: Inlines(text)})
		case LineHeading3:
			out = append(out, &Heading{Level: 3, Inlines: Inlines(text)})
		case LineBlank:
			if len(out) > 0 {
				out = append(out, &LineBreak{})
			}
		default:
			out = append(out, &Paragraph{Inlines: Inlines(text)})
		}
	}
	return pending.flush(out)
}

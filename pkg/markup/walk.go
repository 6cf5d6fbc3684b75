package markup

import "strings"

// Walk calls fn for every inline span in nodes, depth first, parents
// before children. Returning false from fn skips the span's children.
func Walk(nodes []Node, fn func(Inline) bool) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Heading:
			walkInlines(n.Inlines, fn)
		case *Paragraph:
			walkInlines(n.Inlines, fn)
		case *List:
			for _, item := range n.Items {
				walkInlines(item, fn)
			}
		}
	}
}

func walkInlines(in []Inline, fn func(Inline) bool) {
	for _, s := range in {
		if !fn(s) {
			continue
		}
		walkInlines(Children(s), fn)
	}
}

// Children returns the nested spans of s, or nil for leaf spans.
func Children(s Inline) []Inline {
	switch s := s.(type) {
	case *Strong:
		return s.Inlines
	case *Emph:
		return s.Inlines
	case *Link:
		return s.Inlines
	}
	return nil
}

// PlainText flattens spans into unescaped text without any markup.
func PlainText(in []Inline) string {
	var b strings.Builder
	walkInlines(in, func(s Inline) bool {
		switch s := s.(type) {
		case *Text:
			b.WriteString(Unescape(s.Text))
		case *Code:
			b.WriteString(Unescape(s.Text))
		}
		return true
	})
	return b.String()
}

// Links returns the href of every link in nodes, in document order.
func Links(nodes []Node) []string {
	var out []string
	Walk(nodes, func(s Inline) bool {
		if l, ok := s.(*Link); ok {
			out = append(out, Unescape(l.Href))
		}
		return true
	})
	return out
}

package format

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mithrel/inkwell/pkg/markup"
)

// HTML renders nodes as an HTML fragment. Text in the nodes is already
// escaped, so it is written as-is. An empty node list yields "".
func HTML(nodes []markup.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeNode(&b, n)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n markup.Node) {
	switch n := n.(type) {
	case *markup.CodeBlock:
		b.WriteString("<pre><code>")
		b.WriteString(n.Text)
		b.WriteString("</code></pre>\n")
	case *markup.Heading:
		tag := "h" + strconv.Itoa(n.Level)
		b.WriteString("<" + tag + ">")
		writeInlines(b, n.Inlines)
		b.WriteString("</" + tag + ">\n")
	case *markup.List:
		b.WriteString("<ul>\n")
		for _, item := range n.Items {
			b.WriteString("<li>")
			writeInlines(b, item)
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	case *markup.Paragraph:
		b.WriteString("<p>")
		writeInlines(b, n.Inlines)
		b.WriteString("</p>\n")
	case *markup.LineBreak:
		b.WriteString("<br>\n")
	}
}

func writeInlines(b *strings.Builder, in []markup.Inline) {
	for _, s := range in {
		switch s := s.(type) {
		case *markup.Text:
			b.WriteString(s.Text)
		case *markup.Strong:
			b.WriteString("<strong>")
			writeInlines(b, s.Inlines)
			b.WriteString("</strong>")
		case *markup.Emph:
			b.WriteString("<em>")
			writeInlines(b, s.Inlines)
			b.WriteString("</em>")
		case *markup.Code:
			b.WriteString("<code>")
			b.WriteString(s.Text)
			b.WriteString("</code>")
		case *markup.Link:
			b.WriteString(`<a href="`)
			b.WriteString(s.Href)
			b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
			writeInlines(b, s.Inlines)
			b.WriteString("</a>")
		}
	}
}

// Policy returns the allow-list applied to rendered HTML. It admits only
// the elements HTML can produce and http(s) links.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h2", "h3", "p", "ul", "li", "pre", "code", "strong", "em", "br")
	p.AllowAttrs("href").Matching(regexp.MustCompile(`^https?://`)).OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

var policy = Policy()

// SafeHTML renders nodes and, when sanitize is set, passes the result
// through Policy.
func SafeHTML(nodes []markup.Node, sanitize bool) string {
	out := HTML(nodes)
	if !sanitize {
		return out
	}
	return policy.Sanitize(out)
}

// WriteHTML writes the fragment for nodes to w.
func WriteHTML(w io.Writer, nodes []markup.Node, sanitize bool) error {
	_, err := io.WriteString(w, SafeHTML(nodes, sanitize))
	return err
}

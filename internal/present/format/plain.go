package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mithrel/inkwell/pkg/api"
	"github.com/mithrel/inkwell/pkg/markup"
)

var headerLine = "id\ttitle\tprompt\tmodel\tcreated\n"

func esc(field string) string {
	field = strings.ReplaceAll(field, "\t", "\\t")
	field = strings.ReplaceAll(field, "\n", "\\n")
	return field
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// WritePlainPosts writes one tab-aligned row per post. Creation times are
// relative to now ("3 hours ago").
func WritePlainPosts(w io.Writer, posts []api.Post, headers bool, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if headers {
		_, _ = io.WriteString(tw, headerLine)
	}
	for _, p := range posts {
		line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
			esc(p.ID),
			esc(truncate(p.Title(), 48)),
			esc(truncate(p.Prompt, 32)),
			esc(p.Provider+"/"+p.Model),
			humanize.RelTime(p.CreatedAt, now, "ago", "from now"))
		_, _ = io.WriteString(tw, line)
	}
	return tw.Flush()
}

// WritePlainPost writes a post's metadata followed by its body as plain
// text with markup removed.
func WritePlainPost(w io.Writer, p api.Post) error {
	_, err := fmt.Fprintf(w,
		"ID: %s\nCreated: %s\nPrompt: %s\nModel: %s/%s\nSize: %s\n---\n%s\n",
		p.ID,
		p.CreatedAt.Local().Format(time.RFC3339),
		p.Prompt,
		p.Provider, p.Model,
		humanize.Bytes(uint64(len(p.Body))),
		PlainDocument(markup.Render(p.Body)),
	)
	return err
}

// PlainDocument flattens nodes to unformatted text, one block per line.
func PlainDocument(nodes []markup.Node) string {
	var lines []string
	for _, n := range nodes {
		switch n := n.(type) {
		case *markup.CodeBlock:
			lines = append(lines, markup.Unescape(n.Text))
		case *markup.Heading:
			lines = append(lines, markup.PlainText(n.Inlines))
		case *markup.List:
			for _, item := range n.Items {
				lines = append(lines, "- "+markup.PlainText(item))
			}
		case *markup.Paragraph:
			lines = append(lines, markup.PlainText(n.Inlines))
		case *markup.LineBreak:
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

package present

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mithrel/inkwell/internal/present/format"
	"github.com/mithrel/inkwell/internal/present/tui"
	"github.com/mithrel/inkwell/pkg/api"
	"github.com/mithrel/inkwell/pkg/markup"
)

// DocFormat selects how a single generated document is written.
type DocFormat string

const (
	DocHTML     DocFormat = "html"
	DocJSON     DocFormat = "json"
	DocANSI     DocFormat = "ansi"
	DocMarkdown DocFormat = "markdown"
	DocPDF      DocFormat = "pdf"
	DocTree     DocFormat = "tree"
	DocText     DocFormat = "text"
	DocRaw      DocFormat = "raw"
)

// DocFormats lists every document format, for flag help and completion.
var DocFormats = []DocFormat{DocANSI, DocHTML, DocJSON, DocMarkdown, DocPDF, DocText, DocTree, DocRaw}

// ParseDocFormat validates a --format value.
func ParseDocFormat(s string) (DocFormat, bool) {
	for _, f := range DocFormats {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// ListMode selects how history listings are written.
type ListMode int

const (
	ModePlain ListMode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
	ModeYAML
	ModeTUI
)

// ParseMode parses a string like "plain", "pretty", "json", "ndjson", "yaml", "tui".
func ParseMode(s string) (ListMode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	case "yaml":
		return ModeYAML, true
	case "tui":
		return ModeTUI, true
	default:
		return ModePlain, false
	}
}

type Options struct {
	Mode       ListMode
	JSONIndent bool
	Headers    bool
	Sanitize   bool
	Glamour    format.GlamourOptions
	Width      int
	Color      bool
	// Posts backs the interactive history table (delete support).
	Posts tui.PostDeleter
}

// RenderDocument writes raw markdown in the requested document format.
func RenderDocument(w io.Writer, raw, title string, f DocFormat, opts Options) error {
	nodes := markup.Render(raw)
	switch f {
	case DocHTML:
		return format.WriteHTML(w, nodes, opts.Sanitize)
	case DocJSON:
		return format.WriteJSONNodes(w, nodes, opts.JSONIndent)
	case DocANSI:
		return format.WriteANSI(w, nodes, opts.Width)
	case DocMarkdown:
		return format.WriteGlamour(w, raw, opts.Glamour)
	case DocPDF:
		return format.WritePDF(w, nodes, format.PDFOptions{Title: title, Author: "inkwell"})
	case DocTree:
		return format.WriteTree(w, nodes, opts.Color)
	case DocText:
		_, err := io.WriteString(w, format.PlainDocument(nodes)+"\n")
		return err
	case DocRaw:
		_, err := io.WriteString(w, raw)
		return err
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// RenderPosts renders a list of posts according to options.
func RenderPosts(ctx context.Context, w io.Writer, posts []api.Post, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONPosts(w, posts, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONPosts(w, posts)
	case ModeYAML:
		return format.WriteYAMLPosts(w, posts)
	case ModeTUI:
		sel, err := tui.RenderTable(ctx, posts, opts.Headers, opts.Posts)
		if err != nil || sel == nil {
			return err
		}
		return format.WritePrettyPost(w, *sel, opts.Glamour)
	default:
		return format.WritePlainPosts(w, posts, opts.Headers, time.Now())
	}
}

// RenderPost renders a single post according to options.
func RenderPost(w io.Writer, p api.Post, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSONPost(w, p, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSONPosts(w, []api.Post{p})
	case ModeYAML:
		return format.WriteYAMLPosts(w, []api.Post{p})
	case ModePretty:
		return format.WritePrettyPost(w, p, opts.Glamour)
	default:
		return format.WritePlainPost(w, p)
	}
}

package format

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/mithrel/inkwell/pkg/markup"
)

// PDFOptions controls document metadata written into the PDF.
type PDFOptions struct {
	Title  string
	Author string
}

// WritePDF lays nodes out as an A4 document. Inline spans keep their
// weight and style, and links stay clickable.
func WritePDF(w io.Writer, nodes []markup.Node, opts PDFOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	pdf.AddPage()

	if opts.Title != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.MultiCell(0, 8, tr(opts.Title), "", "L", false)
		pdf.Ln(4)
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case *markup.CodeBlock:
			pdf.Ln(2)
			pdf.SetFont("Courier", "", 9)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(markup.Unescape(n.Text)), "", "L", true)
			pdf.Ln(2)
		case *markup.Heading:
			size := 15.0
			if n.Level == 3 {
				size = 13
			}
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, size*0.6, tr(markup.PlainText(n.Inlines)), "", "L", false)
			pdf.Ln(2)
		case *markup.List:
			for _, item := range n.Items {
				pdf.SetFont("Helvetica", "", 10)
				pdf.Write(5, tr("• "))
				writePDFInlines(pdf, tr, item, "")
				pdf.Ln(5)
			}
		case *markup.Paragraph:
			writePDFInlines(pdf, tr, n.Inlines, "")
			pdf.Ln(5)
		case *markup.LineBreak:
			pdf.Ln(3)
		}
	}
	return pdf.Output(w)
}

// writePDFInlines writes spans on the current line. style accumulates
// "B" and "I" from enclosing spans.
func writePDFInlines(pdf *gofpdf.Fpdf, tr func(string) string, in []markup.Inline, style string) {
	for _, s := range in {
		switch s := s.(type) {
		case *markup.Text:
			pdf.SetFont("Helvetica", style, 10)
			pdf.Write(5, tr(markup.Unescape(s.Text)))
		case *markup.Code:
			pdf.SetFont("Courier", "", 10)
			pdf.Write(5, tr(markup.Unescape(s.Text)))
		case *markup.Strong:
			writePDFInlines(pdf, tr, s.Inlines, addStyle(style, "B"))
		case *markup.Emph:
			writePDFInlines(pdf, tr, s.Inlines, addStyle(style, "I"))
		case *markup.Link:
			pdf.SetFont("Helvetica", addStyle(style, "U"), 10)
			pdf.SetTextColor(30, 80, 200)
			pdf.WriteLinkString(5, tr(markup.PlainText(s.Inlines)), markup.Unescape(s.Href))
			pdf.SetTextColor(0, 0, 0)
		}
	}
}

func addStyle(style, s string) string {
	if strings.Contains(style, s) {
		return style
	}
	return style + s
}

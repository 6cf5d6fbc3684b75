// Package markup converts the small markdown dialect produced by the
// generation backend into a sequence of safe, structured content nodes.
//
// Text carried by nodes is already HTML-escaped. A presenter can emit it
// verbatim inside the fixed set of tags it chooses for each node kind
// without re-escaping, and never needs to look at the raw markdown.
package markup

import "encoding/json"

// Kind tags every node and inline span.
type Kind string

func (k Kind) String() string { return string(k) }

const (
	KindCodeBlock Kind = "CodeBlock"
	KindHeading   Kind = "Heading"
	KindList      Kind = "List"
	KindParagraph Kind = "Paragraph"
	KindLineBreak Kind = "LineBreak"

	KindText   Kind = "Text"
	KindStrong Kind = "Strong"
	KindEmph   Kind = "Emph"
	KindCode   Kind = "Code"
	KindLink   Kind = "Link"
)

// Node is a block-level content node.
type Node interface {
	Kind() Kind
	node()
}

// Inline is an inline span inside a heading, paragraph or list item.
type Inline interface {
	Kind() Kind
	inline()
}

// CodeBlock is the escaped body of a fenced code block.
type CodeBlock struct {
	Text string
}

// Heading is a level 2 or level 3 heading.
type Heading struct {
	Level   int
	Inlines []Inline
}

// List is an unordered list; each item is its own inline sequence.
type List struct {
	Items [][]Inline
}

type Paragraph struct {
	Inlines []Inline
}

// LineBreak marks a blank line following content in the same block.
type LineBreak struct{}

func (*CodeBlock) Kind() Kind { return KindCodeBlock }
func (*Heading) Kind() Kind   { return KindHeading }
func (*List) Kind() Kind      { return KindList }
func (*Paragraph) Kind() Kind { return KindParagraph }
func (*LineBreak) Kind() Kind { return KindLineBreak }

func (*CodeBlock) node() {}
func (*Heading) node()   {}
func (*List) node()      {}
func (*Paragraph) node() {}
func (*LineBreak) node() {}

// Text is escaped plain text.
type Text struct {
	Text string
}

type Strong struct {
	Inlines []Inline
}

type Emph struct {
	Inlines []Inline
}

// Code is escaped inline code; its content is never formatted.
type Code struct {
	Text string
}

// Link points at a validated http or https URL. Href is escaped and
// contains no whitespace, quotes or backticks.
type Link struct {
	Href    string
	Inlines []Inline
}

func (*Text) Kind() Kind   { return KindText }
func (*Strong) Kind() Kind { return KindStrong }
func (*Emph) Kind() Kind   { return KindEmph }
func (*Code) Kind() Kind   { return KindCode }
func (*Link) Kind() Kind   { return KindLink }

func (*Text) inline()   {}
func (*Strong) inline() {}
func (*Emph) inline()   {}
func (*Code) inline()   {}
func (*Link) inline()   {}

// JSON forms carry the kind under "t" so consumers can switch on it.

func (n *CodeBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T    Kind   `json:"t"`
		Text string `json:"text"`
	}{n.Kind(), n.Text})
}

func (n *Heading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T       Kind     `json:"t"`
		Level   int      `json:"level"`
		Inlines []Inline `json:"c"`
	}{n.Kind(), n.Level, nonNil(n.Inlines)})
}

func (n *List) MarshalJSON() ([]byte, error) {
	items := make([][]Inline, 0, len(n.Items))
	for _, it := range n.Items {
		items = append(items, nonNil(it))
	}
	return json.Marshal(struct {
		T     Kind       `json:"t"`
		Items [][]Inline `json:"items"`
	}{n.Kind(), items})
}

func (n *Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T       Kind     `json:"t"`
		Inlines []Inline `json:"c"`
	}{n.Kind(), nonNil(n.Inlines)})
}

func (n *LineBreak) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T Kind `json:"t"`
	}{n.Kind()})
}

func (n *Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T    Kind   `json:"t"`
		Text string `json:"text"`
	}{n.Kind(), n.Text})
}

func (n *Strong) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T       Kind     `json:"t"`
		Inlines []Inline `json:"c"`
	}{n.Kind(), nonNil(n.Inlines)})
}

func (n *Emph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T       Kind     `json:"t"`
		Inlines []Inline `json:"c"`
	}{n.Kind(), nonNil(n.Inlines)})
}

func (n *Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T    Kind   `json:"t"`
		Text string `json:"text"`
	}{n.Kind(), n.Text})
}

func (n *Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		T       Kind     `json:"t"`
		Href    string   `json:"href"`
		Inlines []Inline `json:"c"`
	}{n.Kind(), n.Href, nonNil(n.Inlines)})
}

func nonNil(in []Inline) []Inline {
	if in == nil {
		return []Inline{}
	}
	return in
}

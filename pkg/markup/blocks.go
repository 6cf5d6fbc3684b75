package markup

import "strings"

const fence = "```"

// Segment is a span of the raw document: either a fenced code block
// (Source includes both fences) or a run of ordinary text.
type Segment struct {
	Fenced bool
	Source string
}

// Split cuts raw into alternating text and fenced segments. A fence
// closes at the nearest following triple backtick; an opening fence
// without a closer is left in the surrounding text. The result always
// starts and ends with a text segment, possibly empty, and joining every
// Source reproduces raw.
func Split(raw string) []Segment {
	var out []Segment
	rest := raw
	for {
		open := strings.Index(rest, fence)
		if open < 0 {
			break
		}
		end := strings.Index(rest[open+len(fence):], fence)
		if end < 0 {
			break
		}
		end += open + 2*len(fence)
		out = append(out,
			Segment{Source: rest[:open]},
			Segment{Fenced: true, Source: rest[open:end]},
		)
		rest = rest[end:]
	}
	return append(out, Segment{Source: rest})
}

// fencedBody strips the fences and an optional language hint line from a
// fenced segment's source.
func fencedBody(src string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(src, fence), fence)
	if i := strings.IndexByte(body, '\n'); i >= 0 && isLangHint(body[:i]) {
		body = body[i+1:]
	}
	return strings.TrimSuffix(body, "\n")
}

// isLangHint reports whether s is empty or only lowercase ASCII letters.
func isLangHint(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

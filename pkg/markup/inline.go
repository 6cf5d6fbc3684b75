package markup

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// atomMark stands in for an already built span while later rules scan a
// line. Only positions recorded in span.atoms are spans; any other NUL
// byte is ordinary text.
const atomMark = '\x00'

// match is one occurrence of an inline construct within a string.
type match struct {
	start, end           int
	innerStart, innerEnd int
	href                 string
}

// rule finds the leftmost occurrence of its construct at or after from.
// Lookbehind checks see s[from-1], so callers pass the whole string.
type rule struct {
	kind Kind
	find func(s string, from int) (match, bool)
}

// rules are applied in order over the whole line. Code spans are literal,
// so they are claimed first. Every match collapses into one opaque atom
// that later rules may enclose but never split, and a match's inner text
// is formatted by the rules after it.
var rules = []rule{
	{KindCode, findCode},
	{KindLink, findLink},
	{KindStrong, findStrong},
	{KindEmph, findUnderscore},
	{KindEmph, findStar},
}

type atom struct {
	pos  int
	node Inline
}

// span is partially formatted text: escaped characters plus atoms, sorted
// by position.
type span struct {
	s     string
	atoms []atom
}

// Inlines escapes line and splits it into formatted inline spans.
func Inlines(line string) []Inline {
	return span{s: Escape(line)}.format(0).inlines()
}

func (sp span) format(r int) span {
	for ; r < len(rules) && sp.s != ""; r++ {
		sp = sp.apply(r)
	}
	return sp
}

// apply replaces every match of rules[r] with an atom.
func (sp span) apply(r int) span {
	var (
		b    strings.Builder
		out  []atom
		pos  int
		next int
	)
	for pos < len(sp.s) {
		m, ok := rules[r].find(sp.s, pos)
		if !ok {
			break
		}
		for ; next < len(sp.atoms) && sp.atoms[next].pos < m.start; next++ {
			out = append(out, atom{pos: sp.atoms[next].pos - pos + b.Len(), node: sp.atoms[next].node})
		}
		b.WriteString(sp.s[pos:m.start])
		out = append(out, atom{pos: b.Len(), node: sp.build(r, m)})
		b.WriteByte(atomMark)
		for next < len(sp.atoms) && sp.atoms[next].pos < m.end {
			next++
		}
		pos = m.end
	}
	if pos == 0 {
		return sp
	}
	for ; next < len(sp.atoms); next++ {
		out = append(out, atom{pos: sp.atoms[next].pos - pos + b.Len(), node: sp.atoms[next].node})
	}
	b.WriteString(sp.s[pos:])
	return span{s: b.String(), atoms: out}
}

func (sp span) build(r int, m match) Inline {
	inner := sp.slice(m.innerStart, m.innerEnd)
	switch rules[r].kind {
	case KindCode:
		return &Code{Text: inner.s}
	case KindLink:
		return &Link{Href: m.href, Inlines: inner.format(r + 1).inlines()}
	case KindStrong:
		return &Strong{Inlines: inner.format(r + 1).inlines()}
	default:
		return &Emph{Inlines: inner.format(r + 1).inlines()}
	}
}

// slice returns the part of sp between byte offsets i and j.
func (sp span) slice(i, j int) span {
	lo := sort.Search(len(sp.atoms), func(k int) bool { return sp.atoms[k].pos >= i })
	hi := sort.Search(len(sp.atoms), func(k int) bool { return sp.atoms[k].pos >= j })
	sub := span{s: sp.s[i:j]}
	for _, a := range sp.atoms[lo:hi] {
		sub.atoms = append(sub.atoms, atom{pos: a.pos - i, node: a.node})
	}
	return sub
}

// inlines turns the remaining text runs into Text spans around the atoms.
func (sp span) inlines() []Inline {
	var out []Inline
	pos := 0
	for _, a := range sp.atoms {
		if a.pos > pos {
			out = append(out, &Text{Text: sp.s[pos:a.pos]})
		}
		out = append(out, a.node)
		pos = a.pos + 1
	}
	if pos < len(sp.s) {
		out = append(out, &Text{Text: sp.s[pos:]})
	}
	return out
}

// findLink matches [label](http://url) and [label](https://url). Every
// opening bracket before a given closing bracket shares that bracket and
// its target, so both are looked up once.
func findLink(s string, from int) (match, bool) {
	var (
		closeAt = -1
		href    string
		hrefOK  bool
	)
	for i := from; i < len(s); i++ {
		if s[i] != '[' {
			continue
		}
		if closeAt <= i {
			rb := strings.IndexByte(s[i+1:], ']')
			if rb < 0 {
				break
			}
			closeAt = rb + i + 1
			href, hrefOK = "", false
			if rest := s[closeAt+1:]; strings.HasPrefix(rest, "(") {
				href, hrefOK = linkTarget(rest[1:])
			}
		}
		if !hrefOK {
			i = closeAt
			continue
		}
		if closeAt == i+1 {
			continue
		}
		return match{
			start:      i,
			end:        closeAt + 2 + len(href) + 1,
			innerStart: i + 1,
			innerEnd:   closeAt,
			href:       href,
		}, true
	}
	return match{}, false
}

// linkTarget returns the URL at the start of s when it is followed by ')'.
func linkTarget(s string) (string, bool) {
	var scheme string
	switch {
	case strings.HasPrefix(s, "https://"):
		scheme = "https://"
	case strings.HasPrefix(s, "http://"):
		scheme = "http://"
	default:
		return "", false
	}
	n := len(scheme)
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !urlRune(r) {
			break
		}
		n += size
	}
	if n == len(scheme) || n >= len(s) || s[n] != ')' {
		return "", false
	}
	return s[:n], true
}

func urlRune(r rune) bool {
	switch r {
	case ')', '"', '\'', '`', '<', '>', atomMark:
		return false
	}
	return !unicode.IsSpace(r)
}

// findStrong matches **text** with a non-empty, shortest inner text.
func findStrong(s string, from int) (match, bool) {
	i := strings.Index(s[from:], "**")
	if i < 0 {
		return match{}, false
	}
	i += from
	if i+3 > len(s) {
		return match{}, false
	}
	j := strings.Index(s[i+3:], "**")
	if j < 0 {
		return match{}, false
	}
	j += i + 3
	return match{start: i, end: j + 2, innerStart: i + 2, innerEnd: j}, true
}

func findUnderscore(s string, from int) (match, bool) {
	return findDelimited(s, from, '_')
}

func findCode(s string, from int) (match, bool) {
	return findDelimited(s, from, '`')
}

// findDelimited matches d text d where text is non-empty and free of d.
func findDelimited(s string, from int, d byte) (match, bool) {
	i := strings.IndexByte(s[from:], d)
	if i < 0 {
		return match{}, false
	}
	i += from
	for {
		j := strings.IndexByte(s[i+1:], d)
		if j < 0 {
			return match{}, false
		}
		j += i + 1
		if j > i+1 {
			return match{start: i, end: j + 1, innerStart: i + 1, innerEnd: j}, true
		}
		i = j
	}
}

// findStar matches *text* where the opening star is not part of "**",
// text starts with neither whitespace nor a star, and the closing star is
// not followed by another star. A list marker "* " never opens.
func findStar(s string, from int) (match, bool) {
	for i := from; i+1 < len(s); i++ {
		if s[i] != '*' || (i > 0 && s[i-1] == '*') || s[i+1] == '*' {
			continue
		}
		if r, _ := utf8.DecodeRuneInString(s[i+1:]); unicode.IsSpace(r) {
			continue
		}
		for j := i + 2; j < len(s); j++ {
			if s[j] == '*' && (j+1 == len(s) || s[j+1] != '*') {
				return match{start: i, end: j + 1, innerStart: i + 1, innerEnd: j}, true
			}
		}
		// Any closer for a later opener would also close this one.
		break
	}
	return match{}, false
}

package markup

import "strings"

// Ampersand goes first so the entities produced for < and > are not
// escaped again. strings.Replacer works in a single pass, which gives the
// same result regardless of order, but the order documents intent.
var (
	escaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")
)

// Escape replaces &, < and > with their HTML entities.
func Escape(s string) string { return escaper.Replace(s) }

// Unescape reverses Escape. It is used by presenters that emit plain text.
func Unescape(s string) string { return unescaper.Replace(s) }

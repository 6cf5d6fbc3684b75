package tui

import (
	"strings"
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// oneLine collapses whitespace so multi-line prompts fit a table cell.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

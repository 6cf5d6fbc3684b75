package tui

import (
	"github.com/charmbracelet/lipgloss/v2"
)

// renderToast composes a small message over the bottom-right corner of
// the base view.
func renderToast(base, msg string, termW, termH int) string {
	if termW <= 0 {
		termW = 80
	}
	if termH <= 0 {
		termH = 24
	}
	toast := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1e1e2e")).
		Background(lipgloss.Color("#a6e3a1")).
		Bold(true).
		Padding(0, 1).
		Render(msg)
	w, h := lipgloss.Width(toast), lipgloss.Height(toast)
	x := max(0, termW-w-2)
	y := max(0, termH-h-1)

	baseLayer := lipgloss.NewLayer(base).Width(termW).Height(termH)
	fgLayer := lipgloss.NewLayer(toast).Width(w).Height(h).X(x).Y(y)
	return lipgloss.NewCanvas(baseLayer, fgLayer).Render()
}

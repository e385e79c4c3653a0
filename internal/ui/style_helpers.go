package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// headerBar renders segments on a shared background. Styling each word and
// the gaps between them separately keeps the color unbroken, since a
// lipgloss reset inside a segment would otherwise leave bare cells.
type headerBar struct {
	bg    lipgloss.Color
	space string
	parts []string
}

func newHeaderBar(color string) *headerBar {
	bg := lipgloss.Color(color)
	return &headerBar{bg: bg, space: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// add appends text rendered with style. Empty text is skipped.
func (h *headerBar) add(text string, style lipgloss.Style) *headerBar {
	if text == "" {
		return h
	}
	style = style.Background(h.bg)
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	h.parts = append(h.parts, strings.Join(words, h.space))
	return h
}

// render joins the segments with gap and fills the line to width.
func (h *headerBar) render(gap string, width int) string {
	fill := lipgloss.NewStyle().Background(h.bg)
	line := strings.Join(h.parts, fill.Render(gap))
	if width <= 0 {
		return line
	}
	return fill.Width(width).Render(line)
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	helpWidth    = 52
	helpKeyWidth = 12
)

// helpTitles names the groups returned by keyMap.FullHelp, in order.
var helpTitles = []string{"Collections", "Navigation", "Detail", "Records", "General"}

// renderHelp draws the key bindings as a centered modal.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(helpKeyWidth)

	lines := []string{
		styles.Text.Bold(true).Render("Keyboard Shortcuts"),
		styles.FaintText.Render(strings.Repeat("─", 30)),
	}
	for i, group := range m.keys.FullHelp() {
		lines = append(lines, "")
		if i < len(helpTitles) {
			lines = append(lines, styles.AccentText.Bold(true).Render(helpTitles[i]))
		}
		for _, b := range group {
			h := b.Help()
			desc := h.Desc
			if h.Key == m.keys.Delete.Help().Key {
				desc = editorHint(m.editor)
			}
			lines = append(lines, keyStyle.Render(h.Key)+styles.Text.Render(desc))
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(helpWidth).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

// shortHints renders the one-line key summary for the status bar.
func (m Model) shortHints() string {
	bindings := m.keys.ShortHelp()
	if m.editor {
		bindings = append(bindings, m.keys.Delete)
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+strings.ToLower(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func editorHint(editor bool) string {
	if editor {
		return "Delete selected record"
	}
	return "Delete (needs --editor)"
}

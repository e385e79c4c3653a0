package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/state"
)

// renderMain renders the header, tab bar, panes and status line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bar := newHeaderBar(m.theme.Surface).
		add("clubdata", styles.Logo).
		add("strategy "+m.strategy, styles.MutedText)
	if m.editor {
		bar.add("editor", styles.WarningText)
	}
	bar.add("theme "+m.theme.Name, styles.FaintText)
	return bar.render("  ", m.width)
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(club.Resources))
	for i, res := range club.Resources {
		label := fmt.Sprintf("%d %s %d", i+1, titleCase(string(res)), m.snapshot.Count(res))
		if st := m.snapshot.Status[res]; st.LastError != nil && !st.Loaded {
			label += " !"
		}
		if i == m.tab {
			tabs = append(tabs, styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, styles.Tab.Render(label))
		}
	}
	line := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.resource() == club.Events {
		line += styles.FaintText.Render("  filter: " + m.filter.Label())
	}
	return line
}

func (m Model) renderPanes() string {
	listWidth, detailWidth := m.paneWidths()
	height := m.height - chromeHeight - 2
	if height < 1 {
		height = 1
	}

	styles := m.theme.Styles()
	list := styles.Pane.
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Width(listWidth).
		Height(height).
		Render(m.renderList(listWidth, height))
	if detailWidth <= 0 {
		return list
	}
	detail := styles.Pane.
		Width(detailWidth).
		Height(height).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

// renderList renders the column header and the visible window of rows
// around the selection.
func (m Model) renderList(width, height int) string {
	styles := m.theme.Styles()
	res := m.resource()
	rows := m.rows()
	cols := columns[res]

	var b strings.Builder
	header := make([]string, 0, len(cols))
	for _, c := range cols {
		header = append(header, cell(c.title, c.width))
	}
	b.WriteString(styles.FaintText.Render(truncate(strings.Join(header, " "), width)))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(styles.MutedText.Render(m.emptyMessage()))
		return b.String()
	}

	visible := height - 1
	if visible < 1 {
		visible = 1
	}
	selected := m.selected[res]
	start := 0
	if selected >= visible {
		start = selected - visible + 1
	}
	end := start + visible
	if end > len(rows) {
		end = len(rows)
	}

	for i := start; i < end; i++ {
		row := rows[i]
		cells := make([]string, 0, len(cols))
		for j, c := range cols {
			if j < len(row.Cells) {
				cells = append(cells, cell(row.Cells[j], c.width))
			}
		}
		line := truncate(strings.Join(cells, " "), width)
		if i == selected {
			line = styles.Selected.Render(padRight(line, width-badgeWidth(row.Badge)))
		} else {
			line = styles.Text.Render(line)
		}
		if row.Badge != "" {
			line += " " + styles.Badge(row.Badge)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func badgeWidth(badge string) int {
	if badge == "" {
		return 0
	}
	// space plus padding on both sides
	return len([]rune(badge)) + 3
}

func (m Model) emptyMessage() string {
	st := m.snapshot.Status[m.resource()]
	switch {
	case st.LastError != nil && !st.Loaded:
		return "Could not load " + string(m.resource()) + "; retrying"
	case !st.Loaded:
		return "Loading..."
	case m.resource() == club.Events && m.filter != FilterAll:
		return "No " + strings.ToLower(m.filter.Label()) + " events"
	default:
		return "No records"
	}
}

// renderStatus shows, in priority order, a pending notice, the last
// mutation outcome, failing loads, or the key hints.
func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	var msg string
	switch {
	case m.notice != "":
		msg = styles.WarningText.Render(m.notice)
	case m.lastResult != nil:
		msg = renderResult(styles, *m.lastResult)
	case m.failingSummary() != "":
		msg = styles.DangerText.Render(m.failingSummary())
	default:
		msg = styles.FaintText.Render(m.shortHints())
	}
	return truncateStyled(msg, m.width)
}

func renderResult(styles Styles, res state.Result) string {
	text := fmt.Sprintf("%s %s %s: %s", res.Op, res.Resource, res.ID, res.Outcome)
	if res.Err != nil {
		text += " (" + res.Err.Error() + ")"
	}
	if res.OK() {
		return styles.SuccessText.Render(text)
	}
	return styles.DangerText.Render(text)
}

func truncateStyled(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

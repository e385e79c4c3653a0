package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/state"
)

// EventFilter narrows the events tab by status.
type EventFilter int

const (
	FilterAll EventFilter = iota
	FilterUpcoming
	FilterPast
)

func (f EventFilter) next() EventFilter {
	switch f {
	case FilterAll:
		return FilterUpcoming
	case FilterUpcoming:
		return FilterPast
	default:
		return FilterAll
	}
}

// Label returns the display label for the filter.
func (f EventFilter) Label() string {
	switch f {
	case FilterUpcoming:
		return "Upcoming"
	case FilterPast:
		return "Past"
	default:
		return "All"
	}
}

func (f EventFilter) match(e club.Event) bool {
	switch f {
	case FilterUpcoming:
		return e.Status == club.EventUpcoming
	case FilterPast:
		return e.Status == club.EventPast
	default:
		return true
	}
}

type column struct {
	title string
	width int
}

var columns = map[club.Resource][]column{
	club.Events:       {{"Date", 10}, {"Title", 30}, {"Type", 8}},
	club.Members:      {{"Name", 24}, {"Role", 24}},
	club.Achievements: {{"Year", 6}, {"Title", 30}, {"Rank", 12}},
	club.Blog:         {{"Date", 10}, {"Title", 30}, {"Author", 18}},
}

// listRow is one line of the record list.
type listRow struct {
	ID    club.ID
	Cells []string
	Badge string
}

// listRows returns the rows shown for resource in collection order.
func listRows(snap state.Snapshot, resource club.Resource, filter EventFilter) []listRow {
	var rows []listRow
	switch resource {
	case club.Events:
		for _, e := range snap.Events {
			if !filter.match(e) {
				continue
			}
			rows = append(rows, listRow{ID: e.ID, Cells: []string{e.Date, e.Title, string(e.Type)}, Badge: string(e.Status)})
		}
	case club.Members:
		for _, m := range snap.Members {
			rows = append(rows, listRow{ID: m.ID, Cells: []string{m.Name, m.Role}})
		}
	case club.Achievements:
		for _, a := range snap.Achievements {
			rows = append(rows, listRow{ID: a.ID, Cells: []string{a.Year, a.Title, a.Rank}, Badge: string(a.Category)})
		}
	case club.Blog:
		for _, p := range snap.BlogPosts {
			rows = append(rows, listRow{ID: p.ID, Cells: []string{p.Date, p.Title, p.Author}})
		}
	}
	return rows
}

type field struct {
	label string
	value string
}

// detailFields returns the labelled fields and the free-text body of the
// record with id, or ok=false when it is gone.
func detailFields(snap state.Snapshot, resource club.Resource, id club.ID) (fields []field, body string, ok bool) {
	switch resource {
	case club.Events:
		for _, e := range snap.Events {
			if e.ID == id {
				return []field{
					{"Title", e.Title},
					{"Date", e.Date},
					{"Type", string(e.Type)},
					{"Status", string(e.Status)},
					{"Location", e.Location},
					{"Sign-up", e.GoogleFormURL},
				}, e.Description, true
			}
		}
	case club.Members:
		for _, m := range snap.Members {
			if m.ID == id {
				return []field{
					{"Name", m.Name},
					{"Role", m.Role},
					{"Image", m.ImageURL},
					{"GitHub", m.Socials.GitHub},
					{"LinkedIn", m.Socials.LinkedIn},
					{"Twitter", m.Socials.Twitter},
					{"Website", m.Socials.Website},
				}, m.Bio, true
			}
		}
	case club.Achievements:
		for _, a := range snap.Achievements {
			if a.ID == id {
				return []field{
					{"Title", a.Title},
					{"Year", a.Year},
					{"Category", string(a.Category)},
					{"Rank", a.Rank},
					{"Image", a.ImageURL},
				}, a.Description, true
			}
		}
	case club.Blog:
		for _, p := range snap.BlogPosts {
			if p.ID == id {
				body := p.Content
				if p.Excerpt != "" {
					body = p.Excerpt + "\n\n" + p.Content
				}
				return []field{
					{"Title", p.Title},
					{"Date", p.Date},
					{"Author", p.Author},
					{"Tags", strings.Join(p.Tags, ", ")},
				}, body, true
			}
		}
	}
	return nil, "", false
}

// renderDetail renders the detail pane content wrapped to width.
func renderDetail(styles Styles, snap state.Snapshot, resource club.Resource, id club.ID, width int) string {
	fields, body, ok := detailFields(snap, resource, id)
	if !ok {
		return styles.FaintText.Render("No record selected")
	}

	var b strings.Builder
	b.WriteString(styles.FaintText.Render(padRight("ID", 10)))
	b.WriteString(styles.MutedText.Render(id.String()))
	b.WriteString("\n")
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		b.WriteString(styles.FaintText.Render(padRight(f.label, 10)))
		b.WriteString(styles.Text.Render(f.value))
		b.WriteString("\n")
	}
	if strings.TrimSpace(body) != "" {
		b.WriteString("\n")
		wrap := lipgloss.NewStyle().Width(maxWidth(width, 20))
		b.WriteString(wrap.Render(styles.Text.Render(body)))
	}
	return b.String()
}

func maxWidth(w, floor int) int {
	if w < floor {
		return floor
	}
	return w
}

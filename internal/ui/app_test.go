package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/prefs"
	"github.com/crypton-club/clubdata/internal/state"
)

type staticAdapter[T club.Record[T]] struct {
	items []T
}

func (a staticAdapter[T]) Strategy() string                         { return "static" }
func (a staticAdapter[T]) Load(context.Context) ([]T, error)         { return a.items, nil }
func (a staticAdapter[T]) Delete(context.Context, club.ID, []T) error { return nil }

func (a staticAdapter[T]) Create(_ context.Context, rec T, _ []T) (T, error) { return rec, nil }
func (a staticAdapter[T]) Update(_ context.Context, rec T, _ []T) (T, error) { return rec, nil }

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	store := state.NewStore(state.Adapters{
		Events: staticAdapter[club.Event]{items: []club.Event{
			{ID: "e1", Title: "Intro to pwn", Date: "2024-01-10", Type: club.EventWorkshop, Status: club.EventPast},
			{ID: "e2", Title: "Winter CTF", Date: "2024-12-01", Type: club.EventCTF, Status: club.EventUpcoming},
			{ID: "e3", Title: "Pizza night", Date: "2024-12-12", Type: club.EventSocial, Status: club.EventUpcoming},
		}},
		Members:      staticAdapter[club.Member]{items: []club.Member{{ID: "m1", Name: "Ada", Role: "Lead"}}},
		Achievements: staticAdapter[club.Achievement]{},
		Blog:         staticAdapter[club.BlogPost]{},
	}, state.Options{})
	if err := store.LoadAll(context.Background()); err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	return store
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	return updated.(Model), cmd
}

func TestModel_OpensOnSavedCollection(t *testing.T) {
	m := New(context.Background(), Options{Store: newTestStore(t), Collection: "members"})
	if got := m.resource(); got != club.Members {
		t.Fatalf("resource = %q, want members", got)
	}

	m = New(context.Background(), Options{Store: newTestStore(t), Collection: "sponsors"})
	if got := m.resource(); got != club.Events {
		t.Fatalf("unknown collection opened %q, want events", got)
	}
}

func TestModel_NavigationAndFilter(t *testing.T) {
	m := New(context.Background(), Options{Store: newTestStore(t)})

	m, _ = press(t, m, "j")
	if id, _ := m.selectedID(); id != "e2" {
		t.Fatalf("after j selected %q, want e2", id)
	}
	m, _ = press(t, m, "G")
	if id, _ := m.selectedID(); id != "e3" {
		t.Fatalf("after G selected %q, want e3", id)
	}
	m, _ = press(t, m, "j")
	if id, _ := m.selectedID(); id != "e3" {
		t.Fatalf("j past the end moved selection to %q", id)
	}

	m, _ = press(t, m, "f")
	m, _ = press(t, m, "f")
	if m.filter != FilterPast {
		t.Fatalf("filter = %v, want past", m.filter.Label())
	}
	rows := m.rows()
	if len(rows) != 1 || rows[0].ID != "e1" {
		t.Fatalf("past rows = %+v, want only e1", rows)
	}
	if id, _ := m.selectedID(); id != "e1" {
		t.Fatalf("selection not clamped after filtering: %q", id)
	}

	m, _ = press(t, m, "2")
	if m.resource() != club.Members {
		t.Fatalf("2 opened %q, want members", m.resource())
	}
}

func TestModel_DeleteRequiresEditor(t *testing.T) {
	store := newTestStore(t)
	m := New(context.Background(), Options{Store: store})

	m, cmd := press(t, m, "d")
	if cmd != nil {
		t.Fatalf("read-only delete returned a command")
	}
	if !strings.Contains(m.notice, "--editor") {
		t.Fatalf("notice = %q, want editor hint", m.notice)
	}
	if n := len(store.Events.List()); n != 3 {
		t.Fatalf("events = %d after read-only delete, want 3", n)
	}
}

func TestModel_DeleteAsEditor(t *testing.T) {
	store := newTestStore(t)
	m := New(context.Background(), Options{Store: store, Editor: true})

	m, cmd := press(t, m, "d")
	if cmd == nil {
		t.Fatalf("delete returned no command")
	}
	if n := len(store.Events.List()); n != 2 {
		t.Fatalf("events = %d right after delete, want 2", n)
	}

	msg, ok := cmd().(mutationMsg)
	if !ok {
		t.Fatalf("command did not yield a mutationMsg")
	}
	if msg.result.Outcome != state.Confirmed || msg.result.ID != "e1" {
		t.Fatalf("result = %+v, want confirmed delete of e1", msg.result)
	}

	updated, _ := m.Update(msg)
	m = updated.(Model)
	if m.lastResult == nil || m.notice != "" {
		t.Fatalf("mutation outcome not recorded: notice=%q", m.notice)
	}
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(context.Background(), Options{Store: newTestStore(t), PrefsPath: path, Collection: "members"})

	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	saved := prefs.Load(path)
	if saved.Theme != "Kanagawa" || saved.Collection != "members" {
		t.Fatalf("saved prefs = %+v", saved)
	}
}

func TestModel_RedrawsOnStoreChange(t *testing.T) {
	store := newTestStore(t)
	m := New(context.Background(), Options{Store: store, Collection: "members"})

	wait := m.Init()
	store.Members.Add(context.Background(), club.Member{ID: "m2", Name: "Grace"})

	msg := wait()
	if _, ok := msg.(changedMsg); !ok {
		t.Fatalf("Init command yielded %T, want changedMsg", msg)
	}
	updated, next := m.Update(msg)
	m = updated.(Model)
	if next == nil {
		t.Fatalf("changedMsg did not resubscribe")
	}
	if n := len(m.rows()); n != 2 {
		t.Fatalf("rows = %d after change, want 2", n)
	}
}

func TestModel_View(t *testing.T) {
	m := New(context.Background(), Options{Store: newTestStore(t), Strategy: "none"})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View before size = %q", got)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = updated.(Model)
	view := m.View()
	for _, want := range []string{"clubdata", "none", "Events", "Intro to pwn"} {
		if !strings.Contains(view, want) {
			t.Fatalf("View missing %q", want)
		}
	}

	m, _ = press(t, m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
}

func TestModel_StatusHintsFollowEditorMode(t *testing.T) {
	m := New(context.Background(), Options{Store: newTestStore(t)})
	if strings.Contains(m.shortHints(), "delete") {
		t.Fatalf("read-only hints mention delete: %q", m.shortHints())
	}

	m = New(context.Background(), Options{Store: newTestStore(t), Editor: true})
	if !strings.Contains(m.shortHints(), "d delete") {
		t.Fatalf("editor hints = %q, want delete binding", m.shortHints())
	}
}

package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/crypton-club/clubdata/internal/club"
	"github.com/crypton-club/clubdata/internal/prefs"
	"github.com/crypton-club/clubdata/internal/state"
)

// Options configures the UI.
type Options struct {
	Store      *state.Store
	Strategy   string
	Editor     bool // enables deletes
	ThemeName  string
	Collection string // tab to open on
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	strategy  string
	editor    bool
	prefsPath string
	keys      keyMap

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot

	// Navigation state
	tab      int
	selected map[club.Resource]int
	filter   EventFilter

	detail viewport.Model

	// Last mutation started from the UI
	lastResult *state.Result
	notice     string
}

// New creates a new Bubble Tea model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = defaultThemeName
	}

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		strategy:  opts.Strategy,
		editor:    opts.Editor,
		prefsPath: opts.PrefsPath,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		selected:  make(map[club.Resource]int),
		detail:    viewport.New(0, 0),
	}
	if r, err := club.ParseResource(opts.Collection); err == nil {
		m.tab = tabIndex(r)
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

func tabIndex(r club.Resource) int {
	for i, res := range club.Resources {
		if res == r {
			return i
		}
	}
	return 0
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.store == nil {
		return nil
	}
	return waitForChange(m.ctx, m.store)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeDetail()
		m.refreshDetail()
		return m, nil

	case changedMsg:
		cmd := waitForChange(m.ctx, m.store)
		m.snapshot = m.store.Snapshot()
		m.clampSelection()
		m.refreshDetail()
		return m, cmd

	case mutationMsg:
		res := msg.result
		m.lastResult = &res
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.savePrefs()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab((m.tab + 1) % len(club.Resources))
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab((m.tab + len(club.Resources) - 1) % len(club.Resources))
		return m, nil

	case key.Matches(msg, m.keys.JumpTab):
		if len(msg.Runes) == 1 {
			m.switchTab(int(msg.Runes[0] - '1'))
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleFilter):
		if m.resource() == club.Events {
			m.filter = m.filter.next()
			m.clampSelection()
			m.refreshDetail()
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()

	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.HalfPageDown()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.HalfPageUp()
		return m, nil
	}

	return m.handleListKey(msg)
}

// handleListKey moves the selection within the current tab.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.rows())
	if count == 0 {
		return m, nil
	}

	res := m.resource()
	row := m.selected[res]
	switch {
	case key.Matches(msg, m.keys.Down):
		if row < count-1 {
			row++
		}
	case key.Matches(msg, m.keys.Up):
		if row > 0 {
			row--
		}
	case key.Matches(msg, m.keys.Top):
		row = 0
	case key.Matches(msg, m.keys.Bottom):
		row = count - 1
	default:
		return m, nil
	}
	m.selected[res] = row
	m.refreshDetail()
	return m, nil
}

func (m *Model) switchTab(i int) {
	if i < 0 || i >= len(club.Resources) || i == m.tab {
		return
	}
	m.tab = i
	m.clampSelection()
	m.refreshDetail()
}

// deleteSelected removes the selected record. The list updates at once and
// the outcome arrives later as a mutationMsg.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if !m.editor {
		m.notice = "read-only: start with --editor to delete"
		return m, nil
	}
	id, ok := m.selectedID()
	if !ok || m.store == nil {
		return m, nil
	}
	mut, err := m.store.Delete(m.ctx, m.resource(), id)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.lastResult = nil
	m.notice = fmt.Sprintf("deleting %s %s...", m.resource(), id)
	return m, waitForMutation(m.ctx, mut)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Collection: string(m.resource())})
}

func (m Model) resource() club.Resource {
	return club.Resources[m.tab]
}

func (m Model) rows() []listRow {
	return listRows(m.snapshot, m.resource(), m.filter)
}

func (m Model) selectedID() (club.ID, bool) {
	rows := m.rows()
	row := m.selected[m.resource()]
	if row < 0 || row >= len(rows) {
		return "", false
	}
	return rows[row].ID, true
}

// clampSelection keeps every tab's selection inside its row count after
// the data or the filter changed.
func (m *Model) clampSelection() {
	for _, res := range club.Resources {
		n := len(listRows(m.snapshot, res, m.filter))
		switch {
		case n == 0:
			m.selected[res] = 0
		case m.selected[res] >= n:
			m.selected[res] = n - 1
		}
	}
}

func (m *Model) resizeDetail() {
	_, detailWidth := m.paneWidths()
	height := m.height - chromeHeight - 2
	if height < 1 {
		height = 1
	}
	m.detail.Width = detailWidth
	m.detail.Height = height
}

func (m *Model) refreshDetail() {
	id, ok := m.selectedID()
	if !ok {
		id = ""
	}
	m.detail.SetContent(renderDetail(m.theme.Styles(), m.snapshot, m.resource(), id, m.detail.Width))
	m.detail.GotoTop()
}

// paneWidths splits the terminal between list and detail panes. The detail
// pane is dropped on narrow terminals.
func (m Model) paneWidths() (list, detail int) {
	inner := m.width - 2
	if m.width < LayoutCompactWidth {
		return inner, 0
	}
	list = int(float64(m.width) * listPaneRatio)
	detail = m.width - list - 4
	return list - 2, detail
}

func (m Model) failingSummary() string {
	failing := m.snapshot.Failing()
	if len(failing) == 0 {
		return ""
	}
	parts := make([]string, 0, len(failing))
	for _, res := range failing {
		st := m.snapshot.Status[res]
		parts = append(parts, fmt.Sprintf("%s (attempt %d)", res, st.Attempts))
	}
	return "load failed: " + strings.Join(parts, ", ")
}

// Messages

type changedMsg struct{}

type mutationMsg struct {
	result state.Result
}

// Commands

// waitForChange subscribes before returning so no change between the
// snapshot read and the wait is missed.
func waitForChange(ctx context.Context, store *state.Store) tea.Cmd {
	ch := store.Changed()
	return func() tea.Msg {
		select {
		case <-ch:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForMutation(ctx context.Context, mut *state.Mutation) tea.Cmd {
	return func() tea.Msg {
		res, _ := mut.Wait(ctx)
		return mutationMsg{result: res}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

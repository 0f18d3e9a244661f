package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/stretch/internal/storage"
)

const maxReplays = 100

// ReplayIndex is the part of storage.Store the browser needs.
type ReplayIndex interface {
	RecentReplays(limit int) ([]storage.ReplayEntry, error)
	DeleteReplay(name string) (bool, error)
}

// ReplaysKeyMap defines the key bindings for the replay browser.
type ReplaysKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Delete key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ReplaysKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Delete, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ReplaysKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Select, k.Delete, k.Quit},
	}
}

// DefaultReplaysKeyMap returns default key bindings.
func DefaultReplaysKeyMap() ReplaysKeyMap {
	return ReplaysKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ReplaysModel is the Bubble Tea model for browsing recorded replays.
type ReplaysModel struct {
	index    ReplayIndex
	entries  []storage.ReplayEntry
	table    table.Model
	help     help.Model
	keys     ReplaysKeyMap
	now      func() time.Time
	width    int
	height   int
	selected string
	status   string
	quitting bool
}

// NewReplaysModel creates a replay browser over index.
func NewReplaysModel(index ReplayIndex, width, height int) ReplaysModel {
	m := ReplaysModel{
		index:  index,
		help:   help.New(),
		keys:   DefaultReplaysKeyMap(),
		now:    time.Now,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table sized to the terminal.
func (m *ReplaysModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Name", Width: 20},
		{Title: "Frames", Width: 8},
		{Title: "Recorded", Width: 16},
	}

	// Give spare width to the name column, up to 40 cells.
	if w := m.width - 6; w > 44 {
		columns[0].Width = min(w-24, 40)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load refreshes the entries from the index.
func (m *ReplaysModel) load() {
	entries, err := m.index.RecentReplays(maxReplays)
	if err != nil {
		m.status = err.Error()
		entries = nil
	}
	m.entries = entries
	m.updateTableRows()
}

func (m *ReplaysModel) updateTableRows() {
	now := m.now()
	rows := make([]table.Row, len(m.entries))
	for i, e := range m.entries {
		rows[i] = table.Row{
			e.Name,
			fmt.Sprintf("%d", e.Frames),
			e.Age(now),
		}
	}
	m.table.SetRows(rows)
}

// Init initializes the browser.
func (m ReplaysModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the browser.
func (m ReplaysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			if e, ok := m.current(); ok {
				m.selected = e.Name
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if e, ok := m.current(); ok {
				m.status = m.delete(e)
				m.load()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// delete removes the index entry and then its stream file. It returns the
// status line to show.
func (m ReplaysModel) delete(e storage.ReplayEntry) string {
	if _, err := m.index.DeleteReplay(e.Name); err != nil {
		return err.Error()
	}
	if e.Path != "" {
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("deleted %s from the index, stream left behind: %v", e.Name, err)
		}
	}
	return "deleted " + e.Name
}

func (m ReplaysModel) current() (storage.ReplayEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return storage.ReplayEntry{}, false
	}
	return m.entries[i], true
}

// Selected returns the replay chosen with enter, or "".
func (m ReplaysModel) Selected() string {
	return m.selected
}

// View renders the browser.
func (m ReplaysModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("REPLAYS"))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	if len(m.entries) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		b.WriteString(tableStyle.Render(emptyStyle.Render("No replays recorded yet.\nRun `stretch play --record NAME`.")))
	} else {
		b.WriteString(tableStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// RunReplayBrowser runs the browser and returns the chosen replay name,
// or "" if the user quit.
func RunReplayBrowser(index ReplayIndex, width, height int) (string, error) {
	model := NewReplaysModel(index, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := final.(ReplaysModel)
	if !ok {
		return "", nil
	}
	return m.Selected(), nil
}

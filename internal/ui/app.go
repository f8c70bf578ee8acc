package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/five82/famwall/internal/config"
	"github.com/five82/famwall/internal/logtail"
	"github.com/five82/famwall/internal/state"
)

const logLines = 400

// View represents the current active view.
type View int

const (
	ViewMembers View = iota
	ViewEvents
	ViewMessages
	ViewAccount
	ViewLog
	viewCount
)

var viewNames = [viewCount]string{"Members", "Events", "Messages", "Account", "Log"}

func (v View) String() string {
	if v < 0 || v >= viewCount {
		return "Unknown"
	}
	return viewNames[v]
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Store      *state.Store
	Refresh    func() // requests an immediate poll; may be nil
	PollTick   time.Duration
	ThemeName  string
	ConfigPath string // theme changes are saved here when set
	LogPath    string // tailed by the log view when set
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx        context.Context
	store      *state.Store
	refresh    func()
	configPath string
	logPath    string
	pollTick   time.Duration
	keys       keyMap

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Data state
	snapshot    state.Snapshot
	lastUpdated time.Time
	logs        []logtail.Entry

	// Per-view list selection
	selected [viewCount]int
	detail   viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	return Model{
		ctx:         ctx,
		store:       opts.Store,
		refresh:     opts.Refresh,
		configPath:  opts.ConfigPath,
		logPath:     opts.LogPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewMembers,
		detail:      viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, fetchLogCmd(m.logPath))
	}
	return tea.Batch(cmds...)
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
		m.updateDetail(false)
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.clampSelection()
		m.updateDetail(false)
		return m, nil

	case logMsg:
		m.setLogs(msg)
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

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderBody())
	return b.String()
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
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.configPath != "" {
			if err := config.SaveTheme(m.configPath, m.theme.Name); err != nil {
				logrus.WithError(err).Warnln("Failed to save theme")
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.refresh != nil {
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.switchView((m.currentView + 1) % viewCount)
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView((m.currentView + viewCount - 1) % viewCount)
		return m, nil

	case key.Matches(msg, m.keys.ViewMembers):
		m.switchView(ViewMembers)
		return m, nil

	case key.Matches(msg, m.keys.ViewEvents):
		m.switchView(ViewEvents)
		return m, nil

	case key.Matches(msg, m.keys.ViewMessages):
		m.switchView(ViewMessages)
		return m, nil

	case key.Matches(msg, m.keys.ViewAccount):
		m.switchView(ViewAccount)
		return m, nil

	case key.Matches(msg, m.keys.ViewLog):
		m.switchView(ViewLog)
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.detail.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.detail.HalfViewUp()
		return m, nil
	}

	return m.handleListKey(msg)
}

// handleListKey moves the selection of the current list.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.rows())
	if count == 0 {
		return m, nil
	}

	sel := m.selected[m.currentView]
	switch {
	case key.Matches(msg, m.keys.Down):
		if sel < count-1 {
			sel++
		}
	case key.Matches(msg, m.keys.Up):
		if sel > 0 {
			sel--
		}
	case key.Matches(msg, m.keys.Top):
		sel = 0
	case key.Matches(msg, m.keys.Bottom):
		sel = count - 1
	default:
		return m, nil
	}

	if sel != m.selected[m.currentView] {
		m.selected[m.currentView] = sel
		m.updateDetail(true)
	}
	return m, nil
}

func (m *Model) switchView(v View) {
	if v == m.currentView {
		return
	}
	m.currentView = v
	m.clampSelection()
	m.updateDetail(true)
}

// clampSelection keeps every selection inside its list after data changes.
func (m *Model) clampSelection() {
	for v := View(0); v < viewCount; v++ {
		count := len(m.rowsFor(v))
		switch {
		case count == 0:
			m.selected[v] = 0
		case m.selected[v] >= count:
			m.selected[v] = count - 1
		}
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.ctx.Err() != nil {
		return m, tea.Quit
	}
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.logPath != "" {
		cmds = append(cmds, fetchLogCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// setLogs replaces the log entries. A selection on the last entry follows
// new entries as they arrive.
func (m *Model) setLogs(entries []logtail.Entry) {
	following := m.selected[ViewLog] >= len(m.logs)-1
	m.logs = entries
	if following && len(entries) > 0 {
		m.selected[ViewLog] = len(entries) - 1
	}
	m.clampSelection()
	if m.currentView == ViewLog {
		m.updateDetail(false)
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logMsg []logtail.Entry

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func fetchLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Read(path, logLines)
		if err != nil {
			return logMsg{{Level: logrus.ErrorLevel, Message: err.Error()}}
		}
		return logMsg(entries)
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/routerctl/internal/router"
)

// Snapshot is one poll of the router
type Snapshot struct {
	Traffic *router.TrafficStats
	Devices []router.Device
	At      time.Time
}

// FetchFunc polls the router once
type FetchFunc func(ctx context.Context) (*Snapshot, error)

type snapshotMsg struct {
	snapshot *Snapshot
	err      error
}

type pollMsg time.Time

// watchKeyMap defines key bindings for the watch screen
type watchKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// WatchModel is a Bubble Tea model that polls the router on an interval
// and shows traffic and attached devices.
type WatchModel struct {
	Title    string
	fetch    FetchFunc
	interval time.Duration
	timeout  time.Duration

	spinner spinner.Model
	help    help.Model
	keys    watchKeyMap

	snapshot *Snapshot
	err      error
	loading  bool
	polls    int
	width    int
}

// NewWatchModel creates a watch model. Each poll is bounded by timeout.
func NewWatchModel(title string, fetch FetchFunc, interval, timeout time.Duration) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return WatchModel{
		Title:    title,
		fetch:    fetch,
		interval: interval,
		timeout:  timeout,
		spinner:  s,
		help:     help.New(),
		keys: watchKeyMap{
			Refresh: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "refresh"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc", "ctrl+c"),
				key.WithHelp("q", "quit"),
			),
		},
		loading: true,
		width:   GetTerminalWidth(),
	}
}

// Init implements tea.Model
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m WatchModel) poll() tea.Cmd {
	fetch, timeout := m.fetch, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s, err := fetch(ctx)
		return snapshotMsg{snapshot: s, err: err}
	}
}

func (m WatchModel) schedule() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return pollMsg(t)
	})
}

// Update implements tea.Model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.poll()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case snapshotMsg:
		m.loading = false
		m.polls++
		if msg.err != nil {
			// Keep the last good snapshot on screen
			m.err = msg.err
		} else {
			m.err = nil
			m.snapshot = msg.snapshot
		}
		return m, m.schedule()

	case pollMsg:
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m WatchModel) View() string {
	var b strings.Builder

	title := HeaderTitleStyle.Render(strings.ToUpper(m.Title))
	if m.loading {
		title += " " + m.spinner.View()
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.snapshot != nil {
		if m.snapshot.Traffic != nil {
			b.WriteString("  " + m.snapshot.Traffic.Summary() + "\n")
		}
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  %d devices, updated %s", len(m.snapshot.Devices), m.snapshot.At.Format("15:04:05"))))
		b.WriteString("\n")
		if len(m.snapshot.Devices) > 0 {
			b.WriteString(RenderDeviceTable(m.snapshot.Devices))
			b.WriteString("\n")
		}
	} else if !m.loading && m.err == nil {
		b.WriteString(MutedStyle.Render("  No data yet") + "\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorMessageStyle.Render("  " + FailureMarker + " " + router.GetShortErrorMessage(m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Err returns the error from the most recent poll, if any
func (m WatchModel) Err() error {
	return m.err
}

// RunWatch runs the watch screen until the user quits
func RunWatch(ctx context.Context, m WatchModel) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

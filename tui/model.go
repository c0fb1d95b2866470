// Package tui is a terminal view of the live session monitor: a scrolling
// list of decision sessions filtered by the active symbols, the recent
// activity feed, and keys to toggle symbols and trigger analysis.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/neuralcore/activity"
	"github.com/tailored-agentic-units/neuralcore/monitor"
	"github.com/tailored-agentic-units/neuralcore/session"
	"github.com/tailored-agentic-units/neuralcore/store"
)

const (
	refreshInterval = 500 * time.Millisecond
	feedLines       = 6
)

// Sessions pushes store snapshots.
type Sessions interface {
	Subscribe(ctx context.Context) <-chan store.State
}

// Symbols is the symbol activation filter.
type Symbols interface {
	Supported() []string
	IsActive(symbol string) bool
	Toggle(ctx context.Context, symbol string) bool
	Visible(sessions []session.Session) []session.Session
}

// Feed lists recent stream activity.
type Feed interface {
	Entries() []activity.Entry
}

// Controls reports link state and starts analysis runs.
type Controls interface {
	LinkStatus() string
	Trigger(ctx context.Context) error
}

type stateMsg struct{ state store.State }

type tickMsg time.Time

type triggerDoneMsg struct{ err error }

// Model is the bubbletea model for the monitor view.
type Model struct {
	ctx      context.Context
	updates  <-chan store.State
	symbols  Symbols
	feed     Feed
	controls Controls

	styles   styles
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int

	state   store.State
	link    string
	entries []activity.Entry
	notice  string
	failed  bool
}

// New creates a Model. The subscription to sessions ends with ctx.
func New(ctx context.Context, sessions Sessions, symbols Symbols, feed Feed, controls Controls) Model {
	return Model{
		ctx:      ctx,
		updates:  sessions.Subscribe(ctx),
		symbols:  symbols,
		feed:     feed,
		controls: controls,
		styles:   newStyles(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		viewport: viewport.New(80, 20),
		link:     controls.LinkStatus(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForState(m.updates), tick())
}

func waitForState(updates <-chan store.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg{state: state}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-feedLines-5, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.refresh()
		return m, waitForState(m.updates)

	case tickMsg:
		m.link = m.controls.LinkStatus()
		m.entries = m.feed.Entries()
		return m, tick()

	case triggerDoneMsg:
		if msg.err != nil {
			m.notice, m.failed = "trigger failed: "+msg.err.Error(), true
		} else {
			m.notice, m.failed = "analysis requested", false
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "t":
		m.notice, m.failed = "requesting analysis...", false
		ctx, controls := m.ctx, m.controls
		return m, func() tea.Msg { return triggerDoneMsg{err: controls.Trigger(ctx)} }

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		supported := m.symbols.Supported()
		if i := int(key[0] - '1'); i < len(supported) {
			m.symbols.Toggle(m.ctx, supported[i])
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the session list into the viewport.
func (m *Model) refresh() {
	visible := m.symbols.Visible(m.state.Sessions())
	m.viewport.SetContent(renderSessions(visible, m.styles, m.spinner.View(), m.width))
}

func (m Model) View() string {
	var b strings.Builder

	link := m.styles.offline.Render("● " + m.link)
	if m.link == monitor.LinkOnline {
		link = m.styles.online.Render("● " + m.link)
	}
	fmt.Fprintf(&b, "%s  %s  %s\n", m.styles.title.Render("NeuralCore"), link,
		m.styles.meta.Render(fmt.Sprintf("%d sessions", m.state.Len())))

	chips := make([]string, 0, len(m.symbols.Supported()))
	for i, symbol := range m.symbols.Supported() {
		if m.symbols.IsActive(symbol) {
			chips = append(chips, m.styles.chipOn.Render(fmt.Sprintf("[%d] %s", i+1, symbol)))
		} else {
			chips = append(chips, m.styles.chipOff.Render(fmt.Sprintf("[%d] %s", i+1, symbol)))
		}
	}
	b.WriteString(strings.Join(chips, " "))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(renderFeed(m.entries, feedLines, m.styles))
	b.WriteString("\n")

	if m.notice != "" {
		if m.failed {
			b.WriteString(m.styles.errorText.Render(m.notice))
		} else {
			b.WriteString(m.styles.meta.Render(m.notice))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.help.Render("1-4 toggle symbol • t trigger analysis • ↑/↓ scroll • q quit"))
	return b.String()
}

// Run starts the program on the terminal and blocks until the user quits
// or ctx is done.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

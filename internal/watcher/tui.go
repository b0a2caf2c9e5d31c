package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type tickMsg time.Time

// Model is the Bubbletea model for the live watch dashboard.
type Model struct {
	state    *State
	dir      string
	cancelFn func() // called on 'q' to cancel the watch context

	snapshot Snapshot
	frame    int
	width    int
	height   int
}

// NewModel creates a dashboard model over the watcher's shared state.
func NewModel(state *State, dir string, cancelFn func()) Model {
	return Model{state: state, dir: dir, cancelFn: cancelFn}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancelFn != nil {
				m.cancelFn()
			}
			return m, tea.Quit
		}

	case tickMsg:
		m.snapshot = m.state.Snapshot()
		m.frame++
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	snap := m.snapshot
	var b strings.Builder

	uptime := time.Since(snap.StartedAt).Round(time.Second)
	spinner := ""
	if snap.Phase == PhaseSweeping || snap.Phase == PhaseWatching {
		spinner = spinnerChars[m.frame%len(spinnerChars)] + " "
	}

	b.WriteString(headerStyle.Render("downsweep watch"))
	b.WriteString(dimStyle.Render(fmt.Sprintf(" — %s — %s", m.dir, uptime)))
	b.WriteString("\n")
	b.WriteString(spinner + phaseStyle.Render(snap.Phase.String()))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  Events: %d  Moved: %s  Skipped: %s  Failed: %s\n",
		snap.Events,
		movedStyle.Render(fmt.Sprintf("%d", snap.Moved)),
		skipStyle.Render(fmt.Sprintf("%d", snap.Skipped)),
		failedStyle.Render(fmt.Sprintf("%d", snap.Failed))))

	if len(snap.Recent) > 0 {
		b.WriteString("\n  Recent moves:\n")
		count := len(snap.Recent)
		if count > 10 {
			count = 10
		}
		for _, r := range snap.Recent[:count] {
			rel, err := filepath.Rel(m.dir, r.Dest)
			if err != nil {
				rel = r.Dest
			}
			b.WriteString(fmt.Sprintf("    %s  %s %s %s\n",
				dimStyle.Render(r.At.Format("15:04:05")),
				filepath.Base(r.Src),
				dimStyle.Render("→"),
				rel))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("  q to quit"))
	b.WriteString("\n")

	return b.String()
}

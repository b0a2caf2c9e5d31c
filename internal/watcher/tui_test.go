package watcher

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func tickModel(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tickMsg(time.Now()))
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("update returned %T", updated)
	}
	return next
}

func TestModelViewShowsCounts(t *testing.T) {
	state := NewState()
	state.SetPhase(PhaseWatching)
	state.CountMove("/dl/report.pdf", "/dl/documents/2024/marzo/1-15/report.pdf")
	state.CountFailure()

	m := tickModel(t, NewModel(state, "/dl", nil))
	view := m.View()

	for _, want := range []string{"downsweep watch", "WATCHING", "Moved:", "report.pdf"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelQuitCancels(t *testing.T) {
	cancelled := false
	m := NewModel(NewState(), "/dl", func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if !cancelled {
		t.Error("q should invoke the cancel function")
	}
	if cmd == nil {
		t.Error("q should produce a quit command")
	}
}

package watcher

import (
	"sync"
	"time"
)

// Phase represents what the watcher is currently doing.
type Phase int

const (
	PhaseStarting Phase = iota
	PhaseSweeping
	PhaseWatching
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "STARTING"
	case PhaseSweeping:
		return "SWEEPING"
	case PhaseWatching:
		return "WATCHING"
	case PhaseStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// MoveRecord is one relocation shown in the live view.
type MoveRecord struct {
	Src  string
	Dest string
	At   time.Time
}

// Snapshot is an immutable copy of State for TUI rendering.
type Snapshot struct {
	Phase     Phase
	StartedAt time.Time
	Events    int
	Moved     int
	Skipped   int
	Failed    int
	Recent    []MoveRecord
}

const maxRecent = 20

// State is the shared state container: the watch loop writes, the TUI
// reads via Snapshot().
type State struct {
	mu sync.RWMutex

	phase     Phase
	startedAt time.Time

	events  int
	moved   int
	skipped int
	failed  int

	recent []MoveRecord
}

// NewState creates a state container.
func NewState() *State {
	return &State{startedAt: time.Now()}
}

// Snapshot returns an immutable copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Phase:     s.phase,
		StartedAt: s.startedAt,
		Events:    s.events,
		Moved:     s.moved,
		Skipped:   s.skipped,
		Failed:    s.failed,
	}
	if len(s.recent) > 0 {
		snap.Recent = make([]MoveRecord, len(s.recent))
		copy(snap.Recent, s.recent)
	}
	return snap
}

// SetPhase updates the current phase.
func (s *State) SetPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// CountEvent records one filesystem notification.
func (s *State) CountEvent() {
	s.mu.Lock()
	s.events++
	s.mu.Unlock()
}

// CountMove prepends a move to the recent list (most recent first).
func (s *State) CountMove(src, dest string) {
	s.mu.Lock()
	s.moved++
	s.recent = append([]MoveRecord{{Src: src, Dest: dest, At: time.Now()}}, s.recent...)
	if len(s.recent) > maxRecent {
		s.recent = s.recent[:maxRecent]
	}
	s.mu.Unlock()
}

// CountSkip records a skipped file.
func (s *State) CountSkip() {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
}

// CountFailure records a failed relocation.
func (s *State) CountFailure() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

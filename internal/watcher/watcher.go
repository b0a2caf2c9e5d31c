// Package watcher wires filesystem notifications into the organizer.
// It runs the catch-up sweep, then treats newly created files as
// candidates for relocation after a settling delay.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/downsweep/internal/organize"
)

// settleDefault is how long a newly seen file is left alone before it
// is moved, to reduce (not eliminate) races with slow writers.
const settleDefault = time.Second

// pollDefault is the rescan interval when running in poll mode.
const pollDefault = 5 * time.Second

// Config holds watcher configuration.
type Config struct {
	Organizer    *organize.Organizer
	Settle       time.Duration // settling delay before a move; default 1s
	Poll         bool          // rescan on an interval instead of fsnotify
	PollInterval time.Duration // default 5s
}

// Watcher owns the watch loop over one directory.
type Watcher struct {
	cfg   Config
	state *State

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
}

// New creates a watcher with validated configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Organizer == nil {
		return nil, fmt.Errorf("organizer is required")
	}
	if cfg.Settle == 0 {
		cfg.Settle = settleDefault
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = pollDefault
	}

	return &Watcher{
		cfg:     cfg,
		state:   NewState(),
		pending: make(map[string]*time.Timer),
		ready:   make(chan string, 64),
	}, nil
}

// State returns the shared state for TUI consumption.
func (w *Watcher) State() *State {
	return w.state
}

// Run performs the catch-up sweep over existing files, then blocks in
// the watch loop until ctx is cancelled. The sweep completes fully
// before any notification is accepted.
func (w *Watcher) Run(ctx context.Context) error {
	root := w.cfg.Organizer.Root()

	w.state.SetPhase(PhaseSweeping)
	stats, err := w.cfg.Organizer.Sweep(ctx, organize.SweepOptions{
		Observe: func(src, dest string) {
			w.state.CountMove(src, dest)
			slog.Info("moved", "from", src, "to", dest)
		},
	})
	if err != nil {
		w.state.SetPhase(PhaseStopped)
		return fmt.Errorf("catch-up sweep: %w", err)
	}
	slog.Info("catch-up sweep complete", "scanned", stats.Scanned, "moved", stats.Moved)

	w.state.SetPhase(PhaseWatching)
	defer w.state.SetPhase(PhaseStopped)

	if w.cfg.Poll {
		return w.runPoll(ctx, root)
	}
	return w.runFSNotify(ctx, root)
}

// runFSNotify watches the root using fsnotify.
func (w *Watcher) runFSNotify(ctx context.Context, root string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(root); err != nil {
		return fmt.Errorf("watch dir: %w", err)
	}

	slog.Info("watching for new files", "mode", "fsnotify", "dir", root)

	for {
		select {
		case <-ctx.Done():
			w.stopPending()
			slog.Info("watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case path := <-w.ready:
			w.mu.Lock()
			delete(w.pending, path)
			w.mu.Unlock()
			w.process(path)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// handleEvent filters one notification. Only file creations matter: a
// download client's final rename-into-place is delivered as a Create
// for the new name, so the same arm covers fresh files and renamed
// temporaries. Rename events fire for the old name vanishing and are
// dropped along with writes, removals and chmods.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	w.state.CountEvent()

	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		if err == nil {
			slog.Debug("directory created", "path", event.Name)
		}
		return
	}
	if !w.cfg.Organizer.Eligible(event.Name) {
		return
	}

	w.schedule(event.Name)
}

// schedule arms (or re-arms) the settling timer for a path. When the
// timer fires, the path is queued for the watch loop to process
// serially.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, exists := w.pending[path]; exists {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.cfg.Settle, func() {
		w.ready <- path
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[string]*time.Timer)
}

// process relocates one settled file. Failures are logged and do not
// affect later files.
func (w *Watcher) process(path string) {
	switch out := w.cfg.Organizer.Relocate(path); out.Status {
	case organize.StatusMoved:
		w.state.CountMove(path, out.Dest)
		slog.Info("moved", "from", path, "to", out.Dest)
	case organize.StatusSkipped:
		w.state.CountSkip()
		slog.Debug("skipped", "file", path, "reason", out.Reason)
	case organize.StatusFailed:
		w.state.CountFailure()
		slog.Error("relocate failed", "file", path, "error", out.Err)
	}
}

// runPoll rescans the root on a fixed interval, for filesystems where
// fsnotify is unavailable. The interval itself acts as the settling
// delay.
func (w *Watcher) runPoll(ctx context.Context, root string) error {
	slog.Info("watching for new files", "mode", "poll", "dir", root, "interval", w.cfg.PollInterval)

	seen := make(map[string]bool)
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watcher stopped")
			return nil
		case <-ticker.C:
			entries, err := os.ReadDir(root)
			if err != nil {
				slog.Error("poll read dir", "error", err)
				continue
			}
			for _, e := range entries {
				if !e.Type().IsRegular() {
					continue
				}
				path := filepath.Join(root, e.Name())
				if seen[path] || !w.cfg.Organizer.Eligible(path) {
					continue
				}
				seen[path] = true
				w.state.CountEvent()
				w.process(path)
			}
		}
	}
}

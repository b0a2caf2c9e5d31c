package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/downsweep/internal/organize"
)

func testOrganizer(t *testing.T, root string) *organize.Organizer {
	t.Helper()
	o, err := organize.New(organize.Config{
		Root: root,
		Rules: organize.NewRuleset(map[organize.Category][]string{
			organize.CategoryDocuments: {".pdf", ".txt"},
			organize.CategoryImages:    {".jpg"},
		}),
		Months: []string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		},
		TempExts: []string{".crdownload", ".part", ".tmp"},
	})
	if err != nil {
		t.Fatalf("new organizer: %v", err)
	}
	return o
}

func newTestWatcher(t *testing.T, root string, settle time.Duration) *Watcher {
	t.Helper()
	w, err := New(Config{Organizer: testOrganizer(t, root), Settle: settle})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	return w
}

// waitForOrganized polls until name shows up somewhere below root
// other than directly in it.
func waitForOrganized(t *testing.T, root, name string) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var found string
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() && d.Name() == name && filepath.Dir(path) != root {
				found = path
			}
			return nil
		})
		if found != "" {
			return found
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("%s was not organized within deadline", name)
	return ""
}

func TestNewWatcherValidation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing organizer")
	}

	w := newTestWatcher(t, t.TempDir(), 0)
	if w.cfg.Settle != settleDefault {
		t.Errorf("settle default = %v, want %v", w.cfg.Settle, settleDefault)
	}
	if w.cfg.PollInterval != pollDefault {
		t.Errorf("poll interval default = %v, want %v", w.cfg.PollInterval, pollDefault)
	}
}

func TestHandleEventSchedulesCreatedFile(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 10*time.Millisecond)

	path := filepath.Join(root, "report.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Create})

	select {
	case got := <-w.ready:
		if got != path {
			t.Errorf("ready path = %s, want %s", got, path)
		}
	case <-time.After(time.Second):
		t.Fatal("settle timer never fired")
	}
}

func TestHandleEventDebouncesRepeats(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 20*time.Millisecond)

	path := filepath.Join(root, "report.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := fsnotify.Event{Name: path, Op: fsnotify.Create}
	w.handleEvent(ev)
	w.handleEvent(ev)
	w.handleEvent(ev)

	select {
	case <-w.ready:
	case <-time.After(time.Second):
		t.Fatal("settle timer never fired")
	}

	select {
	case extra := <-w.ready:
		t.Errorf("unexpected second ready signal for %s", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHandleEventFilters(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 10*time.Millisecond)

	file := filepath.Join(root, "report.pdf")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "subdir")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	partial := filepath.Join(root, "big.iso.crdownload")
	if err := os.WriteFile(partial, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// writes, removals, directories and temp downloads are all ignored
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: file, Op: fsnotify.Remove})
	w.handleEvent(fsnotify.Event{Name: dir, Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: partial, Op: fsnotify.Create})

	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending = %d, want 0", pending)
	}
}

func TestRunOrganizesNewFile(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the sweep and watcher registration a moment
	time.Sleep(300 * time.Millisecond)

	path := filepath.Join(root, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	organized := waitForOrganized(t, root, "note.txt")
	if got := filepath.Base(filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(organized))))); got != "documents" {
		t.Errorf("organized under %s, want a documents subtree (%s)", got, organized)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop after cancel")
	}
}

func TestRunRenameIntoPlace(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(300 * time.Millisecond)

	// download clients write to a temporary name, then rename into
	// place; the rename is the real ready signal
	partial := filepath.Join(root, "x.part")
	if err := os.WriteFile(partial, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	final := filepath.Join(root, "x.pdf")
	if err := os.Rename(partial, final); err != nil {
		t.Fatal(err)
	}

	organized := waitForOrganized(t, root, "x.pdf")
	if filepath.Base(organized) != "x.pdf" {
		t.Errorf("organized name = %s, want x.pdf", filepath.Base(organized))
	}

	// the intermediate name was never processed
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && d.Name() == "x.part" {
			t.Errorf("intermediate %s should not exist", path)
		}
		return nil
	})

	cancel()
	<-done
}

func TestRunPollMode(t *testing.T) {
	root := t.TempDir()
	org := testOrganizer(t, root)
	w, err := New(Config{Organizer: org, Poll: true, PollInterval: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(root, "photo.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitForOrganized(t, root, "photo.jpg")

	cancel()
	<-done
}

func TestRunSweepsExistingFilesFirst(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "old.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	w := newTestWatcher(t, root, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitForOrganized(t, root, "old.pdf")

	snap := w.State().Snapshot()
	if snap.Moved < 1 {
		t.Errorf("moved = %d, want at least 1", snap.Moved)
	}

	cancel()
	<-done
}

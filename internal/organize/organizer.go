package organize

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Status classifies the result of a relocation attempt.
type Status string

const (
	StatusMoved   Status = "moved"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome is the per-file result of Relocate.
type Outcome struct {
	Status Status
	Dest   string // destination path when moved
	Reason string // why the file was skipped
	Err    error  // what went wrong when failed
}

// Recorder receives successful relocations, e.g. for the move-history
// store. Implementations must swallow their own failures; a recording
// error never surfaces to the relocation pipeline.
type Recorder interface {
	Record(src, dest string, category Category, movedAt time.Time)
}

// Config holds the organizer's injectable configuration, fixed from
// process start to process end.
type Config struct {
	Root     string   // directory being organized
	Rules    *Ruleset // extension → category mapping
	Months   []string // 12-entry month name table
	TempExts []string // partial-download extensions, never processed
	LogName  string   // operation log file name inside Root
	History  Recorder // optional move recorder
}

// defaultLogName is the single loose file the organizer leaves in the
// root; it is never itself organized.
const defaultLogName = ".downsweep.log"

// Organizer classifies files and relocates them into the
// category/year/month/bucket hierarchy under its root.
type Organizer struct {
	root    string
	rules   *Ruleset
	planner *Planner
	temp    map[string]struct{}
	oplog   *Log
	history Recorder
}

// New creates an organizer with validated configuration.
func New(cfg Config) (*Organizer, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if cfg.Rules == nil {
		return nil, fmt.Errorf("ruleset is required")
	}
	if cfg.LogName == "" {
		cfg.LogName = defaultLogName
	}

	planner, err := NewPlanner(cfg.Rules, cfg.Months)
	if err != nil {
		return nil, err
	}

	temp := make(map[string]struct{}, len(cfg.TempExts))
	for _, ext := range cfg.TempExts {
		temp[normalizeExt(ext)] = struct{}{}
	}

	return &Organizer{
		root:    cfg.Root,
		rules:   cfg.Rules,
		planner: planner,
		temp:    temp,
		oplog:   NewLog(filepath.Join(cfg.Root, cfg.LogName)),
		history: cfg.History,
	}, nil
}

// Root returns the directory being organized.
func (o *Organizer) Root() string {
	return o.root
}

// LogPath returns the operation log location.
func (o *Organizer) LogPath() string {
	return o.oplog.Path()
}

// Plan exposes destination planning without moving anything; dry-run
// sweeps report through it.
func (o *Organizer) Plan(path string) (Destination, error) {
	return o.planner.Plan(path, o.root)
}

// Eligible reports whether a path passes the static exclusions: the
// operation log and temporary/partial download extensions.
func (o *Organizer) Eligible(path string) bool {
	if path == o.oplog.Path() {
		return false
	}
	_, isTemp := o.temp[normalizeExt(filepath.Ext(path))]
	return !isTemp
}

// Relocate moves one file into its planned destination. Precondition
// checks run in order: the file still exists, its extension is not a
// temporary marker, and it is not the operation log. Files already in
// their destination directory are skipped, which makes repeat sweeps
// idempotent.
//
// Moves and failures are logged; skips are not, so temporary files
// never appear in the log. Log failures never propagate.
func (o *Organizer) Relocate(path string) Outcome {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Outcome{Status: StatusSkipped, Reason: "vanished"}
		}
		return o.fail(path, fmt.Errorf("stat: %w", err))
	}
	if _, isTemp := o.temp[normalizeExt(filepath.Ext(path))]; isTemp {
		return Outcome{Status: StatusSkipped, Reason: "temporary download"}
	}
	if path == o.oplog.Path() {
		return Outcome{Status: StatusSkipped, Reason: "operation log"}
	}

	dest, err := o.planner.Plan(path, o.root)
	if errors.Is(err, ErrVanished) {
		return Outcome{Status: StatusSkipped, Reason: "vanished"}
	}
	if err != nil {
		return o.fail(path, err)
	}
	if sameDir(filepath.Dir(path), dest.Dir) {
		return Outcome{Status: StatusSkipped, Reason: "already organized"}
	}

	if err := os.MkdirAll(dest.Dir, 0o755); err != nil {
		return o.fail(path, fmt.Errorf("create destination: %w", err))
	}

	target := dest.Path()
	if err := moveFile(path, target); err != nil {
		return o.fail(path, fmt.Errorf("move to %s: %w", target, err))
	}

	o.oplog.Append("MOVE %s -> %s", path, target)
	if o.history != nil {
		o.history.Record(path, target, o.rules.Classify(filepath.Ext(path)), time.Now())
	}
	return Outcome{Status: StatusMoved, Dest: target}
}

func (o *Organizer) fail(path string, err error) Outcome {
	o.oplog.Append("ERROR %s: %v", path, err)
	return Outcome{Status: StatusFailed, Err: err}
}

func sameDir(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// moveFile renames src to dst, falling back to copy+delete when the
// destination is on another filesystem. The fallback preserves the
// file's modification time so the destination stays stable if the
// tree is ever re-planned.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyThenDelete(src, dst)
}

func copyThenDelete(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}

	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

package organize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// SweepOptions controls a batch pass over the root's current contents.
type SweepOptions struct {
	// Recursive includes files in subdirectories, not just direct
	// children of the root.
	Recursive bool
	// DryRun computes and reports destinations without moving files,
	// creating directories, or writing the log.
	DryRun bool
	// Observe, when set, receives every executed (or, in dry-run,
	// planned) move.
	Observe func(src, dest string)
}

// SweepStats summarizes a sweep.
type SweepStats struct {
	Scanned int // eligible regular files considered
	Moved   int // files moved, or would-moves in dry-run
}

// Sweep runs one batch pass over the root, feeding each eligible file
// through the planner and executor. One file's failure never aborts
// the rest of the batch.
func (o *Organizer) Sweep(ctx context.Context, opts SweepOptions) (SweepStats, error) {
	var stats SweepStats

	files, err := o.listFiles(opts.Recursive)
	if err != nil {
		return stats, err
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if !o.Eligible(path) {
			continue
		}
		stats.Scanned++

		if opts.DryRun {
			dest, err := o.Plan(path)
			if err != nil {
				if !errors.Is(err, ErrVanished) {
					slog.Warn("plan failed", "file", path, "error", err)
				}
				continue
			}
			if sameDir(filepath.Dir(path), dest.Dir) {
				continue
			}
			stats.Moved++
			if opts.Observe != nil {
				opts.Observe(path, dest.Path())
			}
			continue
		}

		switch out := o.Relocate(path); out.Status {
		case StatusMoved:
			stats.Moved++
			if opts.Observe != nil {
				opts.Observe(path, out.Dest)
			}
		case StatusFailed:
			slog.Error("relocate failed", "file", path, "error", out.Err)
		}
	}

	return stats, nil
}

// listFiles enumerates regular files under the root. Non-recursive
// mode matches the watch-mode view: direct children only.
func (o *Organizer) listFiles(recursive bool) ([]string, error) {
	if !recursive {
		entries, err := os.ReadDir(o.root)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", o.root, err)
		}
		var files []string
		for _, e := range entries {
			if e.Type().IsRegular() {
				files = append(files, filepath.Join(o.root, e.Name()))
			}
		}
		return files, nil
	}

	var files []string
	err := filepath.WalkDir(o.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", o.root, err)
	}
	return files, nil
}

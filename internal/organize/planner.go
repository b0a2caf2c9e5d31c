package organize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrVanished reports that a file disappeared between observation and
// processing (e.g. removed by a download manager mid-flight). Callers
// skip the file; this is never fatal.
var ErrVanished = errors.New("file vanished before processing")

// Destination is a planned target location for a file.
type Destination struct {
	Dir  string // category/year/month/bucket directory under the root
	Name string // collision-free file name inside Dir
}

// Path returns the full destination path.
func (d Destination) Path() string {
	return filepath.Join(d.Dir, d.Name)
}

// Planner computes destination paths from a file's modification time
// and category. It never touches the filesystem beyond stat calls.
type Planner struct {
	rules  *Ruleset
	months []string
}

// NewPlanner creates a planner. months must contain exactly 12 entries
// (January first); the table is injectable so locales other than the
// default can be configured.
func NewPlanner(rules *Ruleset, months []string) (*Planner, error) {
	if rules == nil {
		return nil, fmt.Errorf("ruleset is required")
	}
	if len(months) != 12 {
		return nil, fmt.Errorf("month table must have 12 entries, got %d", len(months))
	}
	return &Planner{rules: rules, months: months}, nil
}

// Plan resolves the destination directory and a collision-free name for
// a file under root. The directory is root/category/year/month/bucket,
// where bucket splits the month at day 15. Destination dates come from
// the file's modification time.
//
// The collision check-then-name loop is not atomic against concurrent
// writers; simultaneous external processes are out of scope.
func (p *Planner) Plan(path, root string) (Destination, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Destination{}, ErrVanished
		}
		return Destination{}, fmt.Errorf("stat %s: %w", path, err)
	}

	mod := info.ModTime()
	bucket := "1-15"
	if mod.Day() > 15 {
		bucket = "16-31"
	}

	cat := p.rules.Classify(filepath.Ext(path))
	dir := filepath.Join(root, string(cat), strconv.Itoa(mod.Year()), p.months[int(mod.Month())-1], bucket)

	return Destination{Dir: dir, Name: collisionFreeName(dir, filepath.Base(path))}, nil
}

// collisionFreeName returns base, or base with an incrementing numeric
// suffix between stem and extension, until a name not present in dir is
// found. No existing file is ever overwritten by a move.
func collisionFreeName(dir, base string) string {
	if !entryExists(filepath.Join(dir, base)) {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if !entryExists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

func entryExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Log is the append-only operation log kept next to the organized tree.
// Writes are best-effort: any failure is dropped silently so the move
// being logged is never affected. Callers must not retry.
type Log struct {
	path string
}

// NewLog creates a log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file location. The relocation pipeline uses it
// to exclude the log itself from organizing.
func (l *Log) Path() string {
	return l.path
}

// Append writes one "[YYYY-MM-DD HH:MM:SS] message" line.
func (l *Log) Append(format string, args ...any) {
	if l == nil || l.path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(f, "[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), msg)
}

// Package history records successful relocations in a SQLite database
// so past moves stay queryable after the organized tree has churned.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/downsweep/internal/organize"
)

// Move is one recorded relocation.
type Move struct {
	ID          int64
	Source      string
	Destination string
	Category    string
	MovedAt     time.Time
}

// Store manages move-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the default history database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home dir: %w", err)
	}
	return filepath.Join(home, ".downsweep", "history.db"), nil
}

// Open initializes or connects to the history database and applies the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS moves (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source TEXT NOT NULL,
        destination TEXT NOT NULL,
        category TEXT NOT NULL,
        moved_at TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_moves_moved_at ON moves (moved_at)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores one successful move. It implements organize.Recorder:
// failures are logged at debug level and swallowed so the relocation
// pipeline is never affected.
func (s *Store) Record(src, dest string, category organize.Category, movedAt time.Time) {
	_, err := s.db.Exec(
		`INSERT INTO moves (source, destination, category, moved_at) VALUES (?, ?, ?, ?)`,
		src, dest, string(category), movedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		slog.Debug("history record failed", "source", src, "error", err)
	}
}

// Recent returns the newest moves, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Move, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, destination, category, moved_at
         FROM moves ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var moves []Move
	for rows.Next() {
		var m Move
		var movedAt string
		if err := rows.Scan(&m.ID, &m.Source, &m.Destination, &m.Category, &movedAt); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, movedAt)
		if err != nil {
			return nil, fmt.Errorf("parse moved_at %q: %w", movedAt, err)
		}
		m.MovedAt = ts
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moves: %w", err)
	}
	return moves, nil
}

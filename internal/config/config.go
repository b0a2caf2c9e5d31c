package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/downsweep/internal/organize"
)

// Settings holds persistent CLI defaults loaded from a config file.
// Everything has a usable default; the file only overrides.
type Settings struct {
	// Dir is the directory to organize. Empty means the platform
	// downloads folder.
	Dir string `yaml:"dir,omitempty"`

	// SettleDelay is how long the watcher waits after a file appears
	// before moving it, to reduce races with slow writers.
	SettleDelay time.Duration `yaml:"settle_delay,omitempty"`

	// LogName is the operation log file name inside Dir.
	LogName string `yaml:"log_name,omitempty"`

	// HistoryPath is the SQLite move-history database location.
	HistoryPath string `yaml:"history_path,omitempty"`

	// TempExtensions are partial-download suffixes that are never
	// processed.
	TempExtensions []string `yaml:"temp_extensions,omitempty"`

	// Months is the 12-entry month name table used in destination
	// paths, January first.
	Months []string `yaml:"months,omitempty"`

	// Categories maps category names to extension lists. Keys present
	// in the file replace that category's default set; absent keys
	// keep their defaults.
	Categories map[string][]string `yaml:"categories,omitempty"`
}

// Default returns the built-in settings: Spanish month names and the
// stock category sets.
func Default() *Settings {
	return &Settings{
		SettleDelay:    time.Second,
		LogName:        ".downsweep.log",
		TempExtensions: []string{".crdownload", ".part", ".tmp"},
		Months: []string{
			"enero", "febrero", "marzo", "abril", "mayo", "junio",
			"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
		},
		Categories: map[string][]string{
			"documents": {
				".pdf", ".txt", ".doc", ".docx", ".ppt", ".pptx",
				".vtt", ".odt", ".rtf", ".epub", ".md", ".srt",
			},
			"images":   {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"},
			"videos":   {".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm"},
			"archives": {".zip", ".rar", ".7z", ".gz", ".tar", ".bz2", ".xz"},
			"data": {
				".xls", ".xlsx", ".xlsm", ".ods",
				".csv", ".tsv",
				".sql", ".sqlite", ".db", ".mdb", ".accdb",
				".dump", ".bak",
				".parquet", ".feather", ".orc",
			},
			"scripts": {
				".py", ".ipynb",
				".js", ".ts", ".json",
				".rs",
				".c", ".cpp", ".cxx", ".h", ".hpp",
				".html", ".htm", ".css",
				".sh", ".bat", ".ps1",
			},
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file
// yields plain defaults and nil error; a malformed file is an error.
func Load(path string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

func (s *Settings) validate() error {
	if len(s.Months) != 12 {
		return fmt.Errorf("months must have 12 entries, got %d", len(s.Months))
	}
	if s.SettleDelay < 0 {
		return fmt.Errorf("settle_delay must not be negative")
	}
	for name := range s.Categories {
		if _, err := organize.ParseCategory(name); err != nil {
			return err
		}
	}
	return nil
}

// Rules converts the configured category sets into a ruleset.
func (s *Settings) Rules() (*organize.Ruleset, error) {
	sets := make(map[organize.Category][]string, len(s.Categories))
	for name, exts := range s.Categories {
		cat, err := organize.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		sets[cat] = exts
	}
	return organize.NewRuleset(sets), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".downsweep.yml"
	}
	return filepath.Join(home, ".downsweep.yml")
}

// DownloadsDir returns the platform downloads folder for the current
// user.
func DownloadsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home dir: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}

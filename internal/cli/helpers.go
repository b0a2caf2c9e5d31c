package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/downsweep/internal/config"
	"github.com/ppiankov/downsweep/internal/history"
	"github.com/ppiankov/downsweep/internal/organize"
)

// resolveDir picks the target directory with flag > config file >
// platform downloads folder precedence, and verifies it is usable.
// A missing target is fatal for the invocation.
func resolveDir(cmd *cobra.Command, flagVal string, cfg *config.Settings) (string, error) {
	dir := flagVal
	if !cmd.Flags().Changed("dir") {
		if cfg.Dir != "" {
			dir = cfg.Dir
		} else {
			downloads, err := config.DownloadsDir()
			if err != nil {
				return "", err
			}
			dir = downloads
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve target dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("target directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("target %s is not a directory", abs)
	}
	return abs, nil
}

// buildOrganizer assembles the relocation engine from settings.
func buildOrganizer(cfg *config.Settings, dir string, rec organize.Recorder) (*organize.Organizer, error) {
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	return organize.New(organize.Config{
		Root:     dir,
		Rules:    rules,
		Months:   cfg.Months,
		TempExts: cfg.TempExtensions,
		LogName:  cfg.LogName,
		History:  rec,
	})
}

// recorderOrNil avoids handing the organizer a typed nil when the
// history store could not be opened.
func recorderOrNil(store *history.Store) organize.Recorder {
	if store == nil {
		return nil
	}
	return store
}

// openHistory opens the move-history store at the configured location.
func openHistory(cfg *config.Settings) (*history.Store, error) {
	path := cfg.HistoryPath
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

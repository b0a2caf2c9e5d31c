package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/downsweep/internal/config"
	"github.com/ppiankov/downsweep/internal/organize"
)

func newSweepCmd() *cobra.Command {
	var (
		dir       string
		recursive bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Organize a directory's current contents in one pass",
		Long: `Sweep classifies every file in the target directory by extension and
moves it into category/year/month/half-month subfolders, keyed off
each file's modification time. Temporary download files and the
operation log are left alone.

With --dry-run the planned destinations are printed and nothing is
moved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			target, err := resolveDir(cmd, dir, cfg)
			if err != nil {
				return err
			}

			var rec organize.Recorder
			if !dryRun {
				store, err := openHistory(cfg)
				if err != nil {
					// history is a convenience; a sweep still works
					// without it
					slog.Warn("history unavailable", "error", err)
				} else {
					defer func() { _ = store.Close() }()
					rec = store
				}
			}

			org, err := buildOrganizer(cfg, target, rec)
			if err != nil {
				return err
			}

			verb := "moved"
			if dryRun {
				verb = "would move"
			}
			stats, err := org.Sweep(context.Background(), organize.SweepOptions{
				Recursive: recursive,
				DryRun:    dryRun,
				Observe: func(src, dest string) {
					fmt.Printf("%s %s -> %s\n", verb, src, dest)
				},
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nfiles analyzed: %d\n", stats.Scanned)
			if dryRun {
				fmt.Printf("moves simulated: %d\n", stats.Moved)
			} else {
				fmt.Printf("files moved: %d\n", stats.Moved)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to organize (default: downloads folder)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include files in subdirectories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report destinations without moving anything")

	return cmd
}

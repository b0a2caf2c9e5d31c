package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/downsweep/internal/config"
	"github.com/ppiankov/downsweep/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		dir  string
		poll bool
		tui  bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Organize existing files, then keep watching for new ones",
		Long: `Watch first sweeps the target directory's current contents, then
subscribes to filesystem notifications and organizes each new file
after a short settling delay. Runs until interrupted.

Browsers download to temporary names (.crdownload, .part) and rename
into place when done; watch treats that rename as the ready signal and
never touches the temporary file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			target, err := resolveDir(cmd, dir, cfg)
			if err != nil {
				return err
			}

			store, err := openHistory(cfg)
			if err != nil {
				slog.Warn("history unavailable", "error", err)
			} else {
				defer func() { _ = store.Close() }()
			}

			organizer, err := buildOrganizer(cfg, target, recorderOrNil(store))
			if err != nil {
				return err
			}

			w, err := watcher.New(watcher.Config{
				Organizer: organizer,
				Settle:    cfg.SettleDelay,
				Poll:      poll,
			})
			if err != nil {
				return fmt.Errorf("init watcher: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if tui {
				// watch loop in the background, dashboard in the
				// foreground
				go func() { _ = w.Run(ctx) }()

				model := watcher.NewModel(w.State(), target, cancel)
				p := tea.NewProgram(model, tea.WithAltScreen())
				_, err := p.Run()
				return err
			}

			return w.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to watch (default: downloads folder)")
	cmd.Flags().BoolVar(&poll, "poll", false, "use polling instead of fsnotify")
	cmd.Flags().BoolVar(&tui, "tui", false, "show the live dashboard")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/downsweep/internal/config"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded moves",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			moves, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(moves) == 0 {
				fmt.Println("no moves recorded yet")
				return nil
			}

			for _, m := range moves {
				fmt.Printf("%s  %-10s %s -> %s\n",
					m.MovedAt.Local().Format("2006-01-02 15:04:05"),
					m.Category, m.Source, m.Destination)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of moves to show")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luki/thermalarm/internal/config"
	"github.com/luki/thermalarm/internal/record"
	"github.com/luki/thermalarm/internal/viewer"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse recorded monitoring runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := record.NewStore(cfg.Recording.Dir)
		if err != nil {
			return fmt.Errorf("open runs dir: %w", err)
		}
		return viewer.Run(store)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

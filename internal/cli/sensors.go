package cli

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
)

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List host temperature sensors usable with --key",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := host.SensorsTemperatures()
		if err != nil && len(stats) == 0 {
			return fmt.Errorf("enumerate sensors: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("no temperature sensors found")
			return nil
		}
		for _, s := range stats {
			fmt.Printf("%-40s %6.1f°C\n", s.SensorKey, s.Temperature)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sensorsCmd)
}

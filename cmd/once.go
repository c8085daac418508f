package cmd

import (
	"fmt"

	"sjsage522/jobworker/logger"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Runs a single poll-and-notify cycle and exits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		services, err := initializeServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer services.Cleanup()

		result, err := services.Worker.RunOnce(cmd.Context())
		logger.ForComponent("main").Info().
			Int("listings", result.Listings).
			Int("notified", result.Notified).
			Int("notify_failures", result.NotifyFailures).
			Bool("skipped", result.Skipped).
			Msg("Cycle finished")
		if err != nil {
			return fmt.Errorf("cycle failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

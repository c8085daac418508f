package cmd

import (
	"context"
	"fmt"
	"os"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "jobworker",
	Short: "jobworker polls a job search API and sends alerts for new listings.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is fine; the environment may already be set.
		godotenv.Load(envFile)
		logger.Init()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading configuration.")
}

// ExecuteContext runs the command line
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration, exiting on error
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.ForComponent("main").Fatal().Err(err).Msg("Invalid configuration")
	}
	return cfg
}

package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/services/health"
	"sjsage522/jobworker/services/notifier"

	"github.com/spf13/cobra"
)

const startupMessage = "🤖 Job alert bot is running"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs the poll-and-notify loop with the liveness endpoint until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.ForComponent("main")
		cfg := loadConfig()

		log.Info().
			Str("environment", cfg.Environment).
			Str("token_strategy", cfg.TokenStrategy).
			Dur("poll_interval", cfg.PollInterval).
			Msg("Starting application")

		// Set up context with cancellation
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Set up signal handling
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		services, err := initializeServices(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize services")
		}
		defer services.Cleanup()

		server := health.NewServer(net.JoinHostPort("", cfg.Port), services.Worker)
		go func() {
			if err := server.Start(); err != nil {
				log.Error().Err(err).Msg("Health server failed")
			}
		}()

		if cfg.AnnounceStartup {
			if err := services.Notifier.Notify(ctx, notifier.ForStatus(startupMessage)); err != nil {
				log.Warn().Err(err).Msg("Failed to send startup message")
			}
		}

		// Start worker in a goroutine
		workerDone := make(chan error, 1)
		go func() {
			log.Info().Msg("Starting job alert worker")
			workerDone <- services.Worker.Start(ctx)
		}()

		// Wait for shutdown signal or worker exit
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			services.Worker.Stop()
			<-workerDone
		case err := <-workerDone:
			if err != nil {
				log.Error().Err(err).Msg("Worker exited with error")
			} else {
				log.Info().Msg("Worker exited normally")
			}
		}

		// Graceful shutdown
		log.Info().Msg("Shutting down gracefully...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Health server shutdown failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

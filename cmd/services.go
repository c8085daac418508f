package cmd

import (
	"context"

	"sjsage522/jobworker/config"
	"sjsage522/jobworker/helpers"
	"sjsage522/jobworker/internal/search"
	"sjsage522/jobworker/internal/token"
	"sjsage522/jobworker/logger"
	"sjsage522/jobworker/services/cache"
	"sjsage522/jobworker/services/notifier"
	"sjsage522/jobworker/services/worker"
)

// Services holds all the initialized services
type Services struct {
	Cache    cache.CacheService
	Notifier notifier.Notifier
	Worker   *worker.Worker
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Notifier != nil {
		if err := s.Notifier.Close(); err != nil {
			logger.Warn("Failed to close notifier: %v", err)
		}
	}
}

// initializeServices wires the provider, search client and sinks into a worker
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	services.Cache = cache.New(cfg.MemcacheAddr)

	sinks, err := notifier.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	services.Notifier = sinks
	logger.Info("Notification sinks: %v", cfg.NotifySinks)

	services.Worker = worker.NewWorker(
		token.NewProvider(cfg),
		search.NewClient(search.OptionsFromConfig(cfg), services.Cache),
		services.Notifier,
		helpers.NewLogger(cfg.ErrorLogFile),
		worker.OptionsFromConfig(cfg),
	)

	return services, nil
}

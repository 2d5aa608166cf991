package main

import (
	"os"

	"photovault-backend/internal/config"
	"photovault-backend/internal/infrastructure/queue"
	"photovault-backend/pkg/logger"
)

// asynqScheduler wraps queue.Scheduler so main can shut it down uniformly.
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *config.Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.Redis, cfg.Jobs)

	if err := scheduler.RegisterJobs(); err != nil {
		logger.Error("Failed to register scheduled jobs", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("Scheduler starting", map[string]interface{}{
			"cleanup_schedule": cfg.Jobs.CleanupSchedule,
		})
		if err := scheduler.Start(); err != nil {
			logger.Error("Scheduler failed", err)
			os.Exit(1)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

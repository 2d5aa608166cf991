package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"photovault-backend/internal/config"
	"photovault-backend/internal/shared"
	"photovault-backend/pkg/logger"
)

// Scheduler owns the cron-style recurring jobs. It runs alongside the worker
// deployment, never inside the HTTP API.
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(cfg config.RedisConfig, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     cfg.Host,
			Password: cfg.Password,
			DB:       cfg.DB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs wires every recurring job. Only one exists today: the sweep
// of people left with no faces after asset deletions.
func (s *Scheduler) RegisterJobs() error {
	return s.registerPersonCleanupJob()
}

func (s *Scheduler) registerPersonCleanupJob() error {
	payload, err := json.Marshal(shared.PersonCleanupPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePersonCleanup, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.CleanupSchedule,
		task,
		taskOptions(shared.TypePersonCleanup)...,
	)
	if err != nil {
		logger.Error("Failed to register person cleanup job", err)
		return err
	}

	logger.Info("Registered person cleanup job", map[string]interface{}{
		"schedule": s.jobConfig.CleanupSchedule,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

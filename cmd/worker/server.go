package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"photovault-backend/internal/config"
	"photovault-backend/internal/shared"
	"photovault-backend/pkg/logger"
)

// asynqServer wraps asynq.Server so main can shut it down uniformly.
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(cfg *config.Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Host,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: map[string]int{
				shared.QueueHigh:    20,
				shared.QueueDefault: 10,
				shared.QueueLow:     5,
			},
			Concurrency: cfg.Jobs.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().
					Err(err).
					Str("type", task.Type()).
					Msg("Task failed")
			}),
		},
	)

	go func() {
		logger.Info("Worker starting", map[string]interface{}{
			"concurrency": cfg.Jobs.Concurrency,
		})
		if err := srv.Run(mux); err != nil {
			logger.Error("Worker failed", err)
			os.Exit(1)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks before returning.
func (s *asynqServer) Shutdown() {
	s.Server.Shutdown()
}

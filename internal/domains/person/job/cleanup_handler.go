package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"photovault-backend/internal/domains/person/service"
)

// CleanupHandler runs the scheduled sweep of people whose faces are all
// gone. The payload carries nothing; the sweep always covers every owner.
type CleanupHandler struct {
	people service.PersonService
}

func NewCleanupHandler(people service.PersonService) *CleanupHandler {
	return &CleanupHandler{
		people: people,
	}
}

func (h *CleanupHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	log.Info().Msg("Starting orphaned people cleanup")

	deleted, err := h.people.Cleanup(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Orphaned people cleanup failed")
		return fmt.Errorf("person cleanup: %w", err)
	}

	log.Info().
		Int("people_deleted", deleted).
		Msg("Orphaned people cleanup finished")

	return nil
}

package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"photovault-backend/internal/infrastructure/storage"
	"photovault-backend/internal/shared"
)

// DeleteFilesHandler reclaims blob objects left behind by deleted records.
type DeleteFilesHandler struct {
	blob storage.Blob
}

func NewDeleteFilesHandler(blob storage.Blob) *DeleteFilesHandler {
	return &DeleteFilesHandler{
		blob: blob,
	}
}

func (h *DeleteFilesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeleteFilesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeleteFiles payload")
		return asynq.SkipRetry
	}
	if len(payload.Files) == 0 {
		return nil
	}

	if err := h.blob.RemoveObjects(ctx, payload.Files); err != nil {
		log.Error().
			Err(err).
			Strs("files", payload.Files).
			Msg("Failed to delete files from storage")
		return fmt.Errorf("delete files: %w", err)
	}

	log.Info().
		Int("files", len(payload.Files)).
		Msg("Deleted files from storage")

	return nil
}

package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"photovault-backend/internal/domains/person/service"
	"photovault-backend/internal/shared"
)

// GenerateThumbnailHandler renders a person's thumbnail from the selected
// face crop.
type GenerateThumbnailHandler struct {
	thumbnails *service.ThumbnailService
}

func NewGenerateThumbnailHandler(thumbnails *service.ThumbnailService) *GenerateThumbnailHandler {
	return &GenerateThumbnailHandler{
		thumbnails: thumbnails,
	}
}

func (h *GenerateThumbnailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.GenerateFaceThumbnailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal GenerateFaceThumbnail payload")
		return asynq.SkipRetry
	}

	log.Info().
		Str("person_id", payload.PersonID.String()).
		Str("asset_id", payload.AssetID.String()).
		Msg("Generating person thumbnail")

	if err := h.thumbnails.GeneratePersonThumbnail(ctx, payload); err != nil {
		log.Error().
			Err(err).
			Str("person_id", payload.PersonID.String()).
			Msg("Failed to generate person thumbnail")
		return fmt.Errorf("generate thumbnail: %w", err)
	}

	return nil
}

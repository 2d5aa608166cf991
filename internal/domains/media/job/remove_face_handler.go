package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"photovault-backend/internal/domains/media/repository"
	"photovault-backend/internal/shared"
)

// RemoveFaceHandler voids a superseded face reference in the search index.
// Merges emit one of these per conflicting asset before reassigning faces.
type RemoveFaceHandler struct {
	searchRepo repository.SearchRepository
}

func NewRemoveFaceHandler(searchRepo repository.SearchRepository) *RemoveFaceHandler {
	return &RemoveFaceHandler{
		searchRepo: searchRepo,
	}
}

func (h *RemoveFaceHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SearchRemoveFacePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal SearchRemoveFace payload")
		return asynq.SkipRetry
	}

	if err := h.searchRepo.RemoveFace(ctx, payload.AssetID, payload.PersonID); err != nil {
		log.Error().
			Err(err).
			Str("asset_id", payload.AssetID.String()).
			Str("person_id", payload.PersonID.String()).
			Msg("Failed to remove face from search index")
		return fmt.Errorf("remove face: %w", err)
	}

	return nil
}

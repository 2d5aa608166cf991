package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"photovault-backend/internal/domains/media/repository"
	"photovault-backend/internal/shared"
)

// IndexAssetHandler rebuilds search documents after person metadata changes.
type IndexAssetHandler struct {
	assetRepo  repository.AssetRepository
	searchRepo repository.SearchRepository
}

func NewIndexAssetHandler(
	assetRepo repository.AssetRepository,
	searchRepo repository.SearchRepository,
) *IndexAssetHandler {
	return &IndexAssetHandler{
		assetRepo:  assetRepo,
		searchRepo: searchRepo,
	}
}

func (h *IndexAssetHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SearchIndexAssetPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal SearchIndexAsset payload")
		return asynq.SkipRetry
	}

	// The ids can be stale by the time the job runs; index only what survives.
	assets, err := h.assetRepo.GetByIDs(ctx, payload.IDs)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load assets for indexing")
		return fmt.Errorf("load assets: %w", err)
	}
	if len(assets) == 0 {
		log.Info().
			Int("requested", len(payload.IDs)).
			Msg("No assets left to index")
		return nil
	}

	ids := make([]uuid.UUID, 0, len(assets))
	for _, asset := range assets {
		ids = append(ids, asset.ID)
	}

	if err := h.searchRepo.IndexAssets(ctx, ids); err != nil {
		log.Error().
			Err(err).
			Int("assets", len(ids)).
			Msg("Failed to index assets")
		return fmt.Errorf("index assets: %w", err)
	}

	log.Info().
		Int("assets", len(ids)).
		Msg("Rebuilt search documents")

	return nil
}

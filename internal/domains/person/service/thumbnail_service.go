package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	mediaRepository "photovault-backend/internal/domains/media/repository"
	"photovault-backend/internal/domains/person/model"
	"photovault-backend/internal/domains/person/repository"
	"photovault-backend/internal/infrastructure/storage"
	"photovault-backend/internal/shared"
	"photovault-backend/pkg/logger"
)

// ThumbnailService renders person thumbnails on the worker. The request path
// only enqueues the descriptor; everything heavy (blob reads, decoding,
// cropping) happens here.
type ThumbnailService struct {
	personRepo repository.PersonRepository
	assetRepo  mediaRepository.AssetRepository
	blob       storage.Blob
	processor  *storage.ImageProcessor
}

func NewThumbnailService(
	personRepo repository.PersonRepository,
	assetRepo mediaRepository.AssetRepository,
	blob storage.Blob,
	processor *storage.ImageProcessor,
) *ThumbnailService {
	return &ThumbnailService{
		personRepo: personRepo,
		assetRepo:  assetRepo,
		blob:       blob,
		processor:  processor,
	}
}

// GeneratePersonThumbnail crops the face region out of the source asset and
// stores it as the person's thumbnail. The asset or person may have been
// deleted since the job was enqueued; both cases are treated as a no-op
// rather than a failure, since retrying cannot bring the record back.
func (s *ThumbnailService) GeneratePersonThumbnail(ctx context.Context, payload shared.GenerateFaceThumbnailPayload) error {
	asset, err := s.assetRepo.GetByID(ctx, payload.AssetID)
	if err != nil {
		return fmt.Errorf("failed to get asset: %w", err)
	}
	if asset == nil {
		logger.Warn("skipping thumbnail for deleted asset", map[string]interface{}{
			"asset_id":  payload.AssetID,
			"person_id": payload.PersonID,
		})
		return nil
	}

	// Previews are already rotated and capped in size; fall back to the
	// original only when ingest has not produced one yet.
	sourcePath := asset.PreviewPath
	if sourcePath == "" {
		sourcePath = asset.OriginalPath
	}

	data, err := s.blob.Download(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", sourcePath, err)
	}

	thumb, err := s.processor.CropFaceThumbnail(data, payload.BoundingBox, payload.ImageWidth, payload.ImageHeight)
	if err != nil {
		return fmt.Errorf("failed to render thumbnail: %w", err)
	}

	key := PersonThumbnailKey(payload.PersonID)
	if err := s.blob.Upload(ctx, key, thumb, "image/jpeg"); err != nil {
		return fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	_, err = s.personRepo.Update(ctx, model.UpdatePersonFields{
		ID:            payload.PersonID,
		ThumbnailPath: &key,
	})
	if errors.Is(err, model.ErrPersonNotFound) {
		logger.Warn("person deleted before thumbnail finished", map[string]interface{}{
			"person_id": payload.PersonID,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to persist thumbnail path: %w", err)
	}

	logger.Info("rendered person thumbnail", map[string]interface{}{
		"person_id": payload.PersonID,
		"asset_id":  payload.AssetID,
		"path":      key,
	})
	return nil
}

// PersonThumbnailKey is the blob key for a person's rendered thumbnail. One
// key per person: re-renders overwrite in place.
func PersonThumbnailKey(personID uuid.UUID) string {
	return fmt.Sprintf("thumbs/people/%s.jpeg", personID)
}

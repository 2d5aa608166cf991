package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"photovault-backend/internal/config"
	mediaModel "photovault-backend/internal/domains/media/model"
	"photovault-backend/internal/domains/person/model"
	"photovault-backend/internal/domains/person/repository"
	"photovault-backend/internal/infrastructure/queue"
	"photovault-backend/internal/infrastructure/storage"
	"photovault-backend/internal/shared"
	"photovault-backend/pkg/cache"
	"photovault-backend/pkg/logger"
)

const exportSheetName = "People"

type personService struct {
	repo       repository.PersonRepository
	blob       storage.Blob
	dispatcher queue.Dispatcher
	cache      cache.Cache
	cfg        config.PeopleConfig
}

// NewPersonService wires the identity service with its collaborators.
func NewPersonService(
	repo repository.PersonRepository,
	blob storage.Blob,
	dispatcher queue.Dispatcher,
	cache cache.Cache,
	cfg config.PeopleConfig,
) PersonService {
	return &personService{
		repo:       repo,
		blob:       blob,
		dispatcher: dispatcher,
		cache:      cache,
		cfg:        cfg,
	}
}

// GetAll lists the caller's people. Total counts every qualifying person
// including hidden ones, so the store is always asked for the full set and
// hidden entries are filtered out here when the caller did not opt in.
func (s *personService) GetAll(ctx context.Context, ownerID uuid.UUID, withHidden bool) (*model.PeopleResponse, error) {
	cacheKey := listCacheKey(ownerID, withHidden)
	if ttl := s.listCacheTTL(); ttl > 0 {
		var cached model.PeopleResponse
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			logger.Debug("people list cache read failed", map[string]interface{}{
				"key":   cacheKey,
				"error": err.Error(),
			})
		} else if found {
			return &cached, nil
		}
	}

	people, err := s.repo.GetAll(ctx, ownerID, model.GetAllOptions{
		MinimumFaceCount: s.cfg.MinFaceCount,
		WithHidden:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	resp := &model.PeopleResponse{
		People: make([]model.PersonResponse, 0, len(people)),
		Total:  len(people),
	}
	for i := range people {
		person := &people[i]
		if !person.IsHidden {
			resp.Visible++
		}
		if withHidden || !person.IsHidden {
			resp.People = append(resp.People, model.NewPersonResponse(person))
		}
	}

	if ttl := s.listCacheTTL(); ttl > 0 {
		if err := s.cache.Set(ctx, cacheKey, resp, ttl); err != nil {
			logger.Debug("people list cache write failed", map[string]interface{}{
				"key":   cacheKey,
				"error": err.Error(),
			})
		}
	}

	return resp, nil
}

func (s *personService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.PersonResponse, error) {
	person, err := s.findOrFail(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	resp := model.NewPersonResponse(person)
	return &resp, nil
}

// GetThumbnail streams the stored person thumbnail. Both failure paths are
// decided from the record alone; the blob store is only touched on success.
func (s *personService) GetThumbnail(ctx context.Context, ownerID, id uuid.UUID) (*storage.ReadStream, error) {
	person, err := s.findOrFail(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if person.ThumbnailPath == "" {
		return nil, model.ErrNoThumbnail
	}

	stream, err := s.blob.OpenReadStream(ctx, person.ThumbnailPath, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to open thumbnail %s: %w", person.ThumbnailPath, err)
	}
	return stream, nil
}

func (s *personService) GetAssets(ctx context.Context, ownerID, id uuid.UUID) ([]mediaModel.AssetResponse, error) {
	if _, err := s.findOrFail(ctx, ownerID, id); err != nil {
		return nil, err
	}

	assets, err := s.repo.GetAssets(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get person assets: %w", err)
	}

	responses := make([]mediaModel.AssetResponse, 0, len(assets))
	for _, asset := range assets {
		responses = append(responses, mediaModel.NewAssetResponse(asset))
	}
	return responses, nil
}

// Update applies a partial update to one person. The feature-face selection
// and the metadata fields are mutually exclusive; Validate enforces that.
// Job emission is a post-condition of the store write: a dispatch failure
// surfaces as an error but never rolls the write back.
func (s *personService) Update(ctx context.Context, ownerID, id uuid.UUID, req model.UpdatePersonRequest) (*model.PersonResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	person, err := s.findOrFail(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.FeatureFaceAssetID != nil {
		return s.updateFeatureFace(ctx, ownerID, person, *req.FeatureFaceAssetID)
	}
	return s.updateFields(ctx, ownerID, person, req)
}

// updateFeatureFace points the person's thumbnail at one of their detected
// faces. The face's stored crop is applied immediately so clients see the
// switch right away; the render job then re-crops at the configured size.
func (s *personService) updateFeatureFace(ctx context.Context, ownerID uuid.UUID, person *model.Person, assetID uuid.UUID) (*model.PersonResponse, error) {
	face, err := s.repo.GetFaceByID(ctx, model.FaceRef{AssetID: assetID, PersonID: person.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get face: %w", err)
	}
	if face == nil {
		return nil, model.ErrFaceNotFound
	}

	updated, err := s.repo.Update(ctx, model.UpdatePersonFields{
		ID:            person.ID,
		ThumbnailPath: &face.ThumbnailPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}

	payload := shared.GenerateFaceThumbnailPayload{
		AssetID:  face.AssetID,
		PersonID: person.ID,
		BoundingBox: shared.BoundingBox{
			X1: face.BoundingBoxX1,
			X2: face.BoundingBoxX2,
			Y1: face.BoundingBoxY1,
			Y2: face.BoundingBoxY2,
		},
		ImageWidth:  face.ImageWidth,
		ImageHeight: face.ImageHeight,
	}
	if err := s.dispatcher.Dispatch(ctx, shared.TypeGenerateFaceThumbnail, payload); err != nil {
		return nil, fmt.Errorf("failed to enqueue thumbnail generation: %w", err)
	}

	s.invalidateListCache(ctx, ownerID)

	resp := model.NewPersonResponse(updated)
	return &resp, nil
}

func (s *personService) updateFields(ctx context.Context, ownerID uuid.UUID, person *model.Person, req model.UpdatePersonRequest) (*model.PersonResponse, error) {
	fields := model.UpdatePersonFields{ID: person.ID}
	searchableChanged := false

	if req.Name != nil && *req.Name != person.Name {
		fields.Name = req.Name
		searchableChanged = true
	}
	if req.IsHidden != nil && *req.IsHidden != person.IsHidden {
		fields.IsHidden = req.IsHidden
		searchableChanged = true
	}

	birthDate, clearBirthDate, err := req.ParseBirthDate()
	if err != nil {
		return nil, fmt.Errorf("failed to parse birth date: %w", err)
	}
	fields.BirthDate = birthDate
	fields.ClearBirthDate = clearBirthDate

	updated, err := s.repo.Update(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update person: %w", err)
	}

	// The search document carries the person's name and skips hidden people,
	// so only those two fields invalidate it. Birth dates never appear there.
	if searchableChanged {
		if err := s.reindexPersonAssets(ctx, ownerID, person.ID); err != nil {
			return nil, err
		}
	}

	s.invalidateListCache(ctx, ownerID)

	resp := model.NewPersonResponse(updated)
	return &resp, nil
}

func (s *personService) reindexPersonAssets(ctx context.Context, ownerID, personID uuid.UUID) error {
	assets, err := s.repo.GetAssets(ctx, ownerID, personID)
	if err != nil {
		return fmt.Errorf("failed to get person assets: %w", err)
	}
	if len(assets) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(assets))
	for i, asset := range assets {
		ids[i] = asset.ID
	}
	if err := s.dispatcher.Dispatch(ctx, shared.TypeSearchIndexAsset, shared.SearchIndexAssetPayload{IDs: ids}); err != nil {
		return fmt.Errorf("failed to enqueue search indexing: %w", err)
	}
	return nil
}

// BulkUpdate applies independent per-person updates. The batch never aborts:
// every input id gets exactly one result, in input order.
func (s *personService) BulkUpdate(ctx context.Context, ownerID uuid.UUID, req model.BulkUpdatePersonRequest) ([]model.BulkIDResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	results := make([]model.BulkIDResponse, 0, len(req.People))
	for _, item := range req.People {
		if _, err := s.Update(ctx, ownerID, item.ID, item.Update()); err != nil {
			logger.Warn("bulk person update item failed", map[string]interface{}{
				"person_id": item.ID,
				"error":     err.Error(),
			})
			results = append(results, model.BulkIDFailure(item.ID, bulkErrorReason(err)))
			continue
		}
		results = append(results, model.BulkIDSuccess(item.ID))
	}
	return results, nil
}

// Merge folds each listed person into the primary. Secondaries are processed
// independently and report per-id outcomes; only an unresolvable primary
// fails the whole call.
func (s *personService) Merge(ctx context.Context, ownerID, primaryID uuid.UUID, req model.MergePersonRequest) ([]model.BulkIDResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	primary, err := s.findOrFail(ctx, ownerID, primaryID)
	if err != nil {
		return nil, err
	}

	results := make([]model.BulkIDResponse, 0, len(req.IDs))
	for _, mergeID := range req.IDs {
		results = append(results, s.mergeOne(ctx, ownerID, primary, mergeID))
	}

	s.invalidateListCache(ctx, ownerID)
	return results, nil
}

func (s *personService) mergeOne(ctx context.Context, ownerID uuid.UUID, primary *model.Person, mergeID uuid.UUID) model.BulkIDResponse {
	if mergeID == primary.ID {
		logger.Warn("refusing to merge person into itself", map[string]interface{}{
			"person_id": mergeID,
		})
		return model.BulkIDFailure(mergeID, model.BulkErrorUnknown)
	}

	secondary, err := s.repo.GetByID(ctx, ownerID, mergeID)
	if err != nil {
		logger.Error("failed to resolve merge source", err)
		return model.BulkIDFailure(mergeID, model.BulkErrorUnknown)
	}
	if secondary == nil {
		return model.BulkIDFailure(mergeID, model.BulkErrorNotFound)
	}

	data := model.UpdateFacesData{OldPersonID: mergeID, NewPersonID: primary.ID}

	// Assets where both people hold a face would end up with two primary
	// faces after reassignment. The store drops the secondary's rows on those
	// assets and tells us which ones, so their search references get voided.
	conflictAssetIDs, err := s.repo.PrepareReassignFaces(ctx, data)
	if err != nil {
		logger.Error("failed to prepare face reassignment", err)
		return model.BulkIDFailure(mergeID, model.BulkErrorUnknown)
	}
	for _, assetID := range conflictAssetIDs {
		payload := shared.SearchRemoveFacePayload{AssetID: assetID, PersonID: mergeID}
		if err := s.dispatcher.Dispatch(ctx, shared.TypeSearchRemoveFace, payload); err != nil {
			logger.Error("failed to enqueue search face removal", err)
			return model.BulkIDFailure(mergeID, model.BulkErrorUnknown)
		}
	}

	if err := s.repo.ReassignFaces(ctx, data); err != nil {
		logger.Error("failed to reassign faces", err)
		return model.BulkIDFailure(mergeID, model.BulkErrorUnknown)
	}

	if err := s.repo.Delete(ctx, secondary); err != nil {
		logger.Error("failed to delete merged person", err)
		return model.BulkIDFailure(mergeID, model.BulkErrorUnknown)
	}

	logger.Info("merged person", map[string]interface{}{
		"person_id": mergeID,
		"merged_to": primary.ID,
		"conflicts": len(conflictAssetIDs),
	})
	return model.BulkIDSuccess(mergeID)
}

// Cleanup removes every person left without faces, across all owners. One
// failed deletion is logged and skipped; the sweep keeps going.
func (s *personService) Cleanup(ctx context.Context) (int, error) {
	people, err := s.repo.GetAllWithoutFaces(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list orphaned people: %w", err)
	}

	deleted := 0
	for i := range people {
		person := &people[i]
		if err := s.repo.Delete(ctx, person); err != nil {
			logger.Error("failed to delete orphaned person", err)
			continue
		}
		deleted++

		if person.ThumbnailPath != "" {
			payload := shared.DeleteFilesPayload{Files: []string{person.ThumbnailPath}}
			if err := s.dispatcher.Dispatch(ctx, shared.TypeDeleteFiles, payload); err != nil {
				logger.Error("failed to enqueue thumbnail deletion", err)
			}
		}
	}

	if deleted > 0 {
		if err := s.cache.DeletePattern(ctx, "people:list:*"); err != nil {
			logger.Debug("people list cache invalidation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return deleted, nil
}

// ExportPeople renders the caller's people, hidden included, as a workbook.
func (s *personService) ExportPeople(ctx context.Context, ownerID uuid.UUID) (*excelize.File, error) {
	people, err := s.repo.GetAll(ctx, ownerID, model.GetAllOptions{
		MinimumFaceCount: s.cfg.MinFaceCount,
		WithHidden:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return buildPeopleWorkbook(people)
}

func buildPeopleWorkbook(people []model.Person) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to name export sheet: %w", err)
	}

	headers := []string{"ID", "Name", "Birth Date", "Hidden", "Faces", "Created At"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write export header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(exportSheetName, "A1", "F1", style)
	}

	for i := range people {
		person := &people[i]
		row := i + 2

		values := []interface{}{
			person.ID.String(),
			person.Name,
			"",
			person.IsHidden,
			person.FaceCount,
			person.CreatedAt.Format(time.RFC3339),
		}
		if person.BirthDate != nil {
			values[2] = person.BirthDate.Format(model.BirthDateLayout)
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to address export cell: %w", err)
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	return f, nil
}

// findOrFail resolves one person for the caller, translating absence into
// the domain sentinel.
func (s *personService) findOrFail(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error) {
	person, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	if person == nil {
		return nil, model.ErrPersonNotFound
	}
	return person, nil
}

func (s *personService) listCacheTTL() time.Duration {
	if s.cfg.ListCacheTTL <= 0 {
		return 0
	}
	return time.Duration(s.cfg.ListCacheTTL) * time.Second
}

func (s *personService) invalidateListCache(ctx context.Context, ownerID uuid.UUID) {
	if s.listCacheTTL() <= 0 {
		return
	}
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("people:list:%s:*", ownerID)); err != nil {
		logger.Debug("people list cache invalidation failed", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
	}
}

func listCacheKey(ownerID uuid.UUID, withHidden bool) string {
	return fmt.Sprintf("people:list:%s:%t", ownerID, withHidden)
}

func bulkErrorReason(err error) string {
	if errors.Is(err, model.ErrPersonNotFound) {
		return model.BulkErrorNotFound
	}
	return model.BulkErrorUnknown
}

package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	mediaModel "photovault-backend/internal/domains/media/model"
	"photovault-backend/internal/domains/person/model"
	"photovault-backend/internal/infrastructure/storage"
)

// PersonService reconciles detected face clusters with user edits: queries,
// partial updates, duplicate merging, and the orphaned-person cleanup. Every
// mutating operation emits its follow-up work (thumbnail rendering, search
// indexing, blob deletion) through the job dispatcher after the store write
// succeeds; nothing slow runs on the request path.
type PersonService interface {
	GetAll(ctx context.Context, ownerID uuid.UUID, withHidden bool) (*model.PeopleResponse, error)
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.PersonResponse, error)
	GetThumbnail(ctx context.Context, ownerID, id uuid.UUID) (*storage.ReadStream, error)
	GetAssets(ctx context.Context, ownerID, id uuid.UUID) ([]mediaModel.AssetResponse, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, req model.UpdatePersonRequest) (*model.PersonResponse, error)
	BulkUpdate(ctx context.Context, ownerID uuid.UUID, req model.BulkUpdatePersonRequest) ([]model.BulkIDResponse, error)
	Merge(ctx context.Context, ownerID, primaryID uuid.UUID, req model.MergePersonRequest) ([]model.BulkIDResponse, error)
	ExportPeople(ctx context.Context, ownerID uuid.UUID) (*excelize.File, error)

	// Cleanup deletes every orphaned person across all owners and returns how
	// many were removed. It runs on the worker's schedule, not a user request.
	Cleanup(ctx context.Context) (int, error)
}

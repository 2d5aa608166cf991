package repository

import (
	"context"

	"github.com/google/uuid"

	mediaModel "photovault-backend/internal/domains/media/model"
	"photovault-backend/internal/domains/person/model"
)

// PersonRepository is the durable store for person identities and their face
// links. Reassignment and deletion are the concurrency boundary: they must be
// atomic with respect to concurrent readers, so a reader never observes a
// face without an owner. Everything above this interface is plain
// read-compute-write logic.
type PersonRepository interface {
	// GetAll returns the owner's people with at least opts.MinimumFaceCount
	// faces, FaceCount populated, ordered visible-first, named-first, then by
	// face count descending. Hidden people are excluded unless opts.WithHidden.
	GetAll(ctx context.Context, ownerID uuid.UUID, opts model.GetAllOptions) ([]model.Person, error)

	// GetAllWithoutFaces returns every orphaned person across all owners.
	GetAllWithoutFaces(ctx context.Context) ([]model.Person, error)

	// GetByID returns the person scoped to the owner, or (nil, nil) when no
	// such person exists for that owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error)

	// GetAssets returns the owner's assets linked through the person's faces.
	GetAssets(ctx context.Context, ownerID, personID uuid.UUID) ([]mediaModel.Asset, error)

	// GetFaceByID resolves a face by its (asset, person) pair, or (nil, nil)
	// when absent.
	GetFaceByID(ctx context.Context, ref model.FaceRef) (*model.Face, error)

	// Update applies the non-nil fields and returns the stored row.
	// Returns model.ErrPersonNotFound when the person vanished in between.
	Update(ctx context.Context, fields model.UpdatePersonFields) (*model.Person, error)

	// Delete removes the person record. Deleting an already-removed person is
	// a no-op.
	Delete(ctx context.Context, person *model.Person) error

	// PrepareReassignFaces finds the assets where both people hold a face,
	// removes the old person's superseded faces on those assets, and returns
	// the conflicting asset ids.
	PrepareReassignFaces(ctx context.Context, data model.UpdateFacesData) ([]uuid.UUID, error)

	// ReassignFaces moves every remaining face from the old person to the new
	// one in a single atomic step.
	ReassignFaces(ctx context.Context, data model.UpdateFacesData) error
}

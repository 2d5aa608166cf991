package repository

import (
	"context"

	"github.com/google/uuid"

	"photovault-backend/internal/domains/media/model"
)

// AssetRepository is the read-only media store surface this subsystem needs.
type AssetRepository interface {
	// GetByID returns the asset or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error)

	// GetByIDs returns the assets that still exist, in no particular order.
	// Missing ids are silently dropped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error)
}

// SearchRepository maintains the text-search state derived from person
// metadata. It is written only by the worker-side search jobs, so request
// handlers never pay for index maintenance.
type SearchRepository interface {
	// IndexAssets rebuilds the search documents for the given assets from the
	// current face and person rows. Assets that no longer exist are skipped.
	IndexAssets(ctx context.Context, ids []uuid.UUID) error

	// RemoveFace voids one person's face reference on one asset and refreshes
	// that asset's document. Removing a reference that is already gone is not
	// an error.
	RemoveFace(ctx context.Context, assetID, personID uuid.UUID) error
}

package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"photovault-backend/internal/domains/media/model"
)

// MemoryAssetRepository is an in-memory AssetRepository used by tests.
type MemoryAssetRepository struct {
	mu     sync.RWMutex
	assets map[uuid.UUID]model.Asset

	// Error injection for failure-path tests.
	GetErr error
}

var _ AssetRepository = (*MemoryAssetRepository)(nil)

func NewMemoryAssetRepository() *MemoryAssetRepository {
	return &MemoryAssetRepository{assets: make(map[uuid.UUID]model.Asset)}
}

// Add seeds an asset.
func (r *MemoryAssetRepository) Add(asset model.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[asset.ID] = asset
}

func (r *MemoryAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Asset, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, ok := r.assets[id]
	if !ok {
		return nil, nil
	}
	return &asset, nil
}

func (r *MemoryAssetRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Asset, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var assets []model.Asset
	for _, id := range ids {
		if asset, ok := r.assets[id]; ok {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

// MemorySearchRepository is an in-memory SearchRepository. It records how the
// index was touched so tests can assert on job-side effects.
type MemorySearchRepository struct {
	mu sync.Mutex

	// Names indexed per asset, keyed by asset id then person id.
	references map[uuid.UUID]map[uuid.UUID]string

	IndexedBatches [][]uuid.UUID
	RemovedFaces   []FaceKey

	IndexErr  error
	RemoveErr error
}

// FaceKey identifies one (asset, person) reference.
type FaceKey struct {
	AssetID  uuid.UUID
	PersonID uuid.UUID
}

var _ SearchRepository = (*MemorySearchRepository)(nil)

func NewMemorySearchRepository() *MemorySearchRepository {
	return &MemorySearchRepository{references: make(map[uuid.UUID]map[uuid.UUID]string)}
}

func (r *MemorySearchRepository) IndexAssets(ctx context.Context, ids []uuid.UUID) error {
	if r.IndexErr != nil {
		return r.IndexErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.IndexedBatches = append(r.IndexedBatches, ids)
	return nil
}

func (r *MemorySearchRepository) RemoveFace(ctx context.Context, assetID, personID uuid.UUID) error {
	if r.RemoveErr != nil {
		return r.RemoveErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.RemovedFaces = append(r.RemovedFaces, FaceKey{AssetID: assetID, PersonID: personID})
	if refs, ok := r.references[assetID]; ok {
		delete(refs, personID)
	}
	return nil
}

// SetReference seeds a face reference, for tests that assert removal.
func (r *MemorySearchRepository) SetReference(assetID, personID uuid.UUID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.references[assetID] == nil {
		r.references[assetID] = make(map[uuid.UUID]string)
	}
	r.references[assetID][personID] = name
}

// HasReference reports whether a face reference is present.
func (r *MemorySearchRepository) HasReference(assetID, personID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	refs, ok := r.references[assetID]
	if !ok {
		return false
	}
	_, ok = refs[personID]
	return ok
}

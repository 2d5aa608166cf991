package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	mediaModel "photovault-backend/internal/domains/media/model"
	"photovault-backend/internal/domains/person/model"
)

// MemoryPersonRepository is an in-memory PersonRepository used by tests. It
// mirrors the Postgres adapter's semantics, including list ordering and the
// conflicting-face cleanup inside PrepareReassignFaces, and records writes so
// tests can assert which people were actually touched.
type MemoryPersonRepository struct {
	mu     sync.RWMutex
	people []model.Person
	faces  []model.Face
	assets []mediaModel.Asset

	// UpdateCalls records the person id of every Update invocation.
	UpdateCalls []uuid.UUID

	// Error injection for failure-path tests.
	GetAllErr          error
	OrphansErr         error
	GetByIDErr         error
	GetAssetsErr       error
	GetFaceErr         error
	UpdateErr          error
	DeleteErr          error
	PrepareReassignErr error
	ReassignErr        error
}

var _ PersonRepository = (*MemoryPersonRepository)(nil)

func NewMemoryPersonRepository() *MemoryPersonRepository {
	return &MemoryPersonRepository{}
}

// AddPerson seeds a person and returns its id.
func (r *MemoryPersonRepository) AddPerson(p model.Person) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().Add(-time.Duration(len(r.people)) * time.Second)
	}
	r.people = append(r.people, p)
	return p.ID
}

// AddFace seeds a face and returns its id.
func (r *MemoryPersonRepository) AddFace(f model.Face) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.faces = append(r.faces, f)
	return f.ID
}

// AddAsset seeds an asset for GetAssets lookups.
func (r *MemoryPersonRepository) AddAsset(a mediaModel.Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = append(r.assets, a)
}

func (r *MemoryPersonRepository) faceCount(personID uuid.UUID) int {
	count := 0
	for _, f := range r.faces {
		if f.PersonID == personID {
			count++
		}
	}
	return count
}

func (r *MemoryPersonRepository) GetAll(ctx context.Context, ownerID uuid.UUID, opts model.GetAllOptions) ([]model.Person, error) {
	if r.GetAllErr != nil {
		return nil, r.GetAllErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var people []model.Person
	for _, p := range r.people {
		if p.OwnerID != ownerID {
			continue
		}
		if p.IsHidden && !opts.WithHidden {
			continue
		}
		// The store query inner-joins faces, so zero-face people never list
		// regardless of the threshold.
		p.FaceCount = r.faceCount(p.ID)
		if p.FaceCount == 0 || p.FaceCount < opts.MinimumFaceCount {
			continue
		}
		people = append(people, p)
	}

	sort.SliceStable(people, func(i, j int) bool {
		a, b := people[i], people[j]
		if a.IsHidden != b.IsHidden {
			return !a.IsHidden
		}
		if (a.Name == "") != (b.Name == "") {
			return a.Name != ""
		}
		if a.FaceCount != b.FaceCount {
			return a.FaceCount > b.FaceCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return people, nil
}

func (r *MemoryPersonRepository) GetAllWithoutFaces(ctx context.Context) ([]model.Person, error) {
	if r.OrphansErr != nil {
		return nil, r.OrphansErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var people []model.Person
	for _, p := range r.people {
		if r.faceCount(p.ID) == 0 {
			people = append(people, p)
		}
	}
	return people, nil
}

func (r *MemoryPersonRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*model.Person, error) {
	if r.GetByIDErr != nil {
		return nil, r.GetByIDErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.people {
		if p.ID == id && p.OwnerID == ownerID {
			person := p
			return &person, nil
		}
	}
	return nil, nil
}

func (r *MemoryPersonRepository) GetAssets(ctx context.Context, ownerID, personID uuid.UUID) ([]mediaModel.Asset, error) {
	if r.GetAssetsErr != nil {
		return nil, r.GetAssetsErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var assets []mediaModel.Asset
	for _, f := range r.faces {
		if f.PersonID != personID || seen[f.AssetID] {
			continue
		}
		for _, a := range r.assets {
			if a.ID == f.AssetID && a.OwnerID == ownerID {
				seen[f.AssetID] = true
				assets = append(assets, a)
				break
			}
		}
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].CreatedAt.After(assets[j].CreatedAt)
	})
	return assets, nil
}

func (r *MemoryPersonRepository) GetFaceByID(ctx context.Context, ref model.FaceRef) (*model.Face, error) {
	if r.GetFaceErr != nil {
		return nil, r.GetFaceErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.faces {
		if f.AssetID == ref.AssetID && f.PersonID == ref.PersonID {
			face := f
			return &face, nil
		}
	}
	return nil, nil
}

func (r *MemoryPersonRepository) Update(ctx context.Context, fields model.UpdatePersonFields) (*model.Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.UpdateCalls = append(r.UpdateCalls, fields.ID)
	if r.UpdateErr != nil {
		return nil, r.UpdateErr
	}

	for i := range r.people {
		if r.people[i].ID != fields.ID {
			continue
		}

		p := &r.people[i]
		if fields.Name != nil {
			p.Name = *fields.Name
		}
		switch {
		case fields.ClearBirthDate:
			p.BirthDate = nil
		case fields.BirthDate != nil:
			birthDate := *fields.BirthDate
			p.BirthDate = &birthDate
		}
		if fields.ThumbnailPath != nil {
			p.ThumbnailPath = *fields.ThumbnailPath
		}
		if fields.IsHidden != nil {
			p.IsHidden = *fields.IsHidden
		}
		p.UpdatedAt = time.Now()

		person := *p
		return &person, nil
	}

	return nil, model.ErrPersonNotFound
}

func (r *MemoryPersonRepository) Delete(ctx context.Context, person *model.Person) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.people {
		if r.people[i].ID == person.ID {
			r.people = append(r.people[:i], r.people[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryPersonRepository) PrepareReassignFaces(ctx context.Context, data model.UpdateFacesData) ([]uuid.UUID, error) {
	if r.PrepareReassignErr != nil {
		return nil, r.PrepareReassignErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	oldAssets := make(map[uuid.UUID]bool)
	newAssets := make(map[uuid.UUID]bool)
	for _, f := range r.faces {
		switch f.PersonID {
		case data.OldPersonID:
			oldAssets[f.AssetID] = true
		case data.NewPersonID:
			newAssets[f.AssetID] = true
		}
	}

	var conflicting []uuid.UUID
	for _, f := range r.faces {
		if f.PersonID == data.OldPersonID && newAssets[f.AssetID] && oldAssets[f.AssetID] {
			conflicting = append(conflicting, f.AssetID)
			oldAssets[f.AssetID] = false
		}
	}

	if len(conflicting) > 0 {
		kept := r.faces[:0]
		for _, f := range r.faces {
			superseded := false
			if f.PersonID == data.OldPersonID {
				for _, assetID := range conflicting {
					if f.AssetID == assetID {
						superseded = true
						break
					}
				}
			}
			if !superseded {
				kept = append(kept, f)
			}
		}
		r.faces = kept
	}

	return conflicting, nil
}

func (r *MemoryPersonRepository) ReassignFaces(ctx context.Context, data model.UpdateFacesData) error {
	if r.ReassignErr != nil {
		return r.ReassignErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.faces {
		if r.faces[i].PersonID == data.OldPersonID {
			r.faces[i].PersonID = data.NewPersonID
		}
	}
	return nil
}

// FacesOf returns the person's current faces, for test assertions.
func (r *MemoryPersonRepository) FacesOf(personID uuid.UUID) []model.Face {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var faces []model.Face
	for _, f := range r.faces {
		if f.PersonID == personID {
			faces = append(faces, f)
		}
	}
	return faces
}

// HasPerson reports whether the person record still exists, for tests.
func (r *MemoryPersonRepository) HasPerson(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.people {
		if p.ID == id {
			return true
		}
	}
	return false
}

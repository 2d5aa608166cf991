package model

import (
	"time"

	"github.com/google/uuid"
)

// Asset type constants.
const (
	AssetTypeImage = "image"
	AssetTypeVideo = "video"
)

// Asset is a stored media item. Assets are written by the upload/ingest
// pipeline; this subsystem only reads them, either to list a person's media
// or to source pixels for thumbnail rendering.
type Asset struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OwnerID      uuid.UUID `json:"ownerId" db:"owner_id"`
	Type         string    `json:"type" db:"type"`
	OriginalPath string    `json:"originalPath" db:"original_path"`
	PreviewPath  string    `json:"previewPath" db:"preview_path"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// AssetResponse is the public projection returned by the API.
type AssetResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewAssetResponse(a Asset) AssetResponse {
	return AssetResponse{
		ID:        a.ID,
		Type:      a.Type,
		CreatedAt: a.CreatedAt,
	}
}

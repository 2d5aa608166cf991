package shared

import "github.com/google/uuid"

// Task type names routed through asynq. Kept here so producers (domain
// services) and consumers (worker handlers) never import each other.
const (
	TypeGenerateFaceThumbnail = "person:generate_thumbnail"
	TypePersonCleanup         = "person:cleanup"
	TypeSearchIndexAsset      = "search:index_asset"
	TypeSearchRemoveFace      = "search:remove_face"
	TypeDeleteFiles           = "storage:delete_files"
)

// Queue names, matched by the worker's priority map.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// BoundingBox is a face rectangle in source-image pixel coordinates.
type BoundingBox struct {
	X1 int `json:"x1"`
	X2 int `json:"x2"`
	Y1 int `json:"y1"`
	Y2 int `json:"y2"`
}

// GenerateFaceThumbnailPayload carries everything the worker needs to crop a
// person thumbnail out of the source asset: the box is in the coordinate
// space of the image as it was at detection time, so the renderer rescales it
// against the actual decoded dimensions.
type GenerateFaceThumbnailPayload struct {
	AssetID     uuid.UUID   `json:"assetId"`
	PersonID    uuid.UUID   `json:"personId"`
	BoundingBox BoundingBox `json:"boundingBox"`
	ImageWidth  int         `json:"imageWidth"`
	ImageHeight int         `json:"imageHeight"`
}

// SearchIndexAssetPayload requests re-indexing of the given assets.
type SearchIndexAssetPayload struct {
	IDs []uuid.UUID `json:"ids"`
}

// SearchRemoveFacePayload voids one person's face reference on one asset in
// the search index.
type SearchRemoveFacePayload struct {
	AssetID  uuid.UUID `json:"assetId"`
	PersonID uuid.UUID `json:"personId"`
}

// DeleteFilesPayload names blob paths to reclaim.
type DeleteFilesPayload struct {
	Files []string `json:"files"`
}

// PersonCleanupPayload triggers the orphaned-person sweep. Emitted by the
// scheduler; empty on purpose so manual enqueueing stays trivial.
type PersonCleanupPayload struct{}

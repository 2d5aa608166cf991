package model

import (
	"time"

	"github.com/google/uuid"
)

// BirthDateLayout is the wire format for birth dates.
const BirthDateLayout = "2006-01-02"

// Person is a named or unnamed identity clustering one or more detected
// faces. A person with zero faces is orphaned and gets removed by the
// recurring cleanup job.
type Person struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	OwnerID       uuid.UUID  `json:"ownerId" db:"owner_id"`
	Name          string     `json:"name" db:"name"`
	BirthDate     *time.Time `json:"birthDate" db:"birth_date"`
	ThumbnailPath string     `json:"thumbnailPath" db:"thumbnail_path"`
	IsHidden      bool       `json:"isHidden" db:"is_hidden"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	// FaceCount is populated by list queries, never stored.
	FaceCount int `json:"faceCount" db:"-"`
}

// Face is a single detected face instance on one asset. Faces are written by
// the detection pipeline; this subsystem only reads them and reassigns their
// person link. The bounding box is immutable once recorded and lives in the
// pixel space of the image as it was at detection time.
type Face struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AssetID       uuid.UUID `json:"assetId" db:"asset_id"`
	PersonID      uuid.UUID `json:"personId" db:"person_id"`
	BoundingBoxX1 int       `json:"boundingBoxX1" db:"bounding_box_x1"`
	BoundingBoxY1 int       `json:"boundingBoxY1" db:"bounding_box_y1"`
	BoundingBoxX2 int       `json:"boundingBoxX2" db:"bounding_box_x2"`
	BoundingBoxY2 int       `json:"boundingBoxY2" db:"bounding_box_y2"`
	ImageWidth    int       `json:"imageWidth" db:"image_width"`
	ImageHeight   int       `json:"imageHeight" db:"image_height"`
	ThumbnailPath string    `json:"thumbnailPath" db:"thumbnail_path"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// GetAllOptions filters the person listing.
type GetAllOptions struct {
	// MinimumFaceCount excludes people with fewer associated faces.
	MinimumFaceCount int
	// WithHidden includes hidden people in the result.
	WithHidden bool
}

// FaceRef addresses one face by its (asset, person) pair.
type FaceRef struct {
	AssetID  uuid.UUID
	PersonID uuid.UUID
}

// UpdatePersonFields is a partial update; nil fields are left untouched.
// ClearBirthDate nulls the stored date, since a nil BirthDate alone cannot
// distinguish "leave as is" from "remove".
type UpdatePersonFields struct {
	ID             uuid.UUID
	Name           *string
	BirthDate      *time.Time
	ClearBirthDate bool
	ThumbnailPath  *string
	IsHidden       *bool
}

// UpdateFacesData names the two sides of a face reassignment.
type UpdateFacesData struct {
	OldPersonID uuid.UUID
	NewPersonID uuid.UUID
}

// PersonResponse is the public projection of a person. Name is always a
// string, never null; an unnamed person renders as "".
type PersonResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	BirthDate     *string   `json:"birthDate"`
	ThumbnailPath string    `json:"thumbnailPath"`
	IsHidden      bool      `json:"isHidden"`
}

// PeopleResponse is the listing envelope. Total counts every qualifying
// person including hidden ones; Visible counts only those not hidden.
type PeopleResponse struct {
	People  []PersonResponse `json:"people"`
	Total   int              `json:"total"`
	Visible int              `json:"visible"`
}

func NewPersonResponse(p *Person) PersonResponse {
	resp := PersonResponse{
		ID:            p.ID,
		Name:          p.Name,
		ThumbnailPath: p.ThumbnailPath,
		IsHidden:      p.IsHidden,
	}
	if p.BirthDate != nil {
		birthDate := p.BirthDate.Format(BirthDateLayout)
		resp.BirthDate = &birthDate
	}
	return resp
}

package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Reason codes for per-item outcomes. They appear only inside batch and
// merge results, never as call-level errors.
const (
	BulkErrorNotFound = "not_found"
	BulkErrorUnknown  = "unknown"
)

// BulkIDResponse reports the outcome of one item in a batch or merge call.
// Callers always receive one entry per requested id, in request order.
type BulkIDResponse struct {
	ID      uuid.UUID `json:"id"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

func BulkIDSuccess(id uuid.UUID) BulkIDResponse {
	return BulkIDResponse{ID: id, Success: true}
}

func BulkIDFailure(id uuid.UUID, reason string) BulkIDResponse {
	return BulkIDResponse{ID: id, Error: reason}
}

// UpdatePersonRequest is a partial update. Absent fields are left untouched;
// an empty birthDate string removes the stored date. Selecting a feature face
// is mutually exclusive with every other field: the thumbnail choice drives a
// render job while the metadata fields drive re-indexing, and mixing the two
// in one call has no defined outcome.
type UpdatePersonRequest struct {
	Name               *string    `json:"name"`
	BirthDate          *string    `json:"birthDate"`
	IsHidden           *bool      `json:"isHidden"`
	FeatureFaceAssetID *uuid.UUID `json:"featureFaceAssetId"`
}

func (req UpdatePersonRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Length(0, 255)),
		validation.Field(&req.BirthDate, validation.Date(BirthDateLayout).Max(time.Now())),
		validation.Field(&req.FeatureFaceAssetID, validation.By(req.featureFaceIsExclusive)),
	)
}

func (req UpdatePersonRequest) featureFaceIsExclusive(interface{}) error {
	if req.FeatureFaceAssetID == nil {
		return nil
	}
	if req.Name != nil || req.BirthDate != nil || req.IsHidden != nil {
		return errors.New("cannot be combined with other fields")
	}
	return nil
}

// HasFieldChanges reports whether the request carries any metadata field.
func (req UpdatePersonRequest) HasFieldChanges() bool {
	return req.Name != nil || req.BirthDate != nil || req.IsHidden != nil
}

// ParseBirthDate returns the requested date, or clear=true when the caller
// sent an empty string to remove it. Call Validate first; this assumes the
// format already checked out.
func (req UpdatePersonRequest) ParseBirthDate() (value *time.Time, clear bool, err error) {
	if req.BirthDate == nil {
		return nil, false, nil
	}
	if *req.BirthDate == "" {
		return nil, true, nil
	}

	parsed, err := time.Parse(BirthDateLayout, *req.BirthDate)
	if err != nil {
		return nil, false, err
	}
	return &parsed, false, nil
}

// BulkUpdatePersonItem is one entry of a bulk update; the same partial-update
// shape as UpdatePersonRequest plus the target id.
type BulkUpdatePersonItem struct {
	ID                 uuid.UUID  `json:"id"`
	Name               *string    `json:"name"`
	BirthDate          *string    `json:"birthDate"`
	IsHidden           *bool      `json:"isHidden"`
	FeatureFaceAssetID *uuid.UUID `json:"featureFaceAssetId"`
}

// Update projects the item onto the single-update request shape. Per-item
// semantic problems (bad date, feature-face conflicts) surface as that item's
// failure, never as a call-level error.
func (item BulkUpdatePersonItem) Update() UpdatePersonRequest {
	return UpdatePersonRequest{
		Name:               item.Name,
		BirthDate:          item.BirthDate,
		IsHidden:           item.IsHidden,
		FeatureFaceAssetID: item.FeatureFaceAssetID,
	}
}

// BulkUpdatePersonRequest updates many people in one call.
type BulkUpdatePersonRequest struct {
	People []BulkUpdatePersonItem `json:"people"`
}

func (req BulkUpdatePersonRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.People, validation.Required, validation.Length(1, 1000)),
	)
}

// MergePersonRequest folds the listed people into the person addressed by
// the URL.
type MergePersonRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (req MergePersonRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.IDs, validation.Required, validation.Length(1, 1000)),
	)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault-backend/internal/domains/person/model"
	"photovault-backend/internal/shared"
)

func TestUpdateRenameReindexesAssets(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Unknown"})
	first := seedFaceOnAsset(f.repo, owner, id)
	second := seedFaceOnAsset(f.repo, owner, id)

	resp, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{Name: ptr("Alice")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Name)

	jobs := f.dispatcher.ByType(shared.TypeSearchIndexAsset)
	require.Len(t, jobs, 1)

	var payload shared.SearchIndexAssetPayload
	require.NoError(t, jobs[0].Decode(&payload))
	assert.ElementsMatch(t, []uuid.UUID{first, second}, payload.IDs)
}

func TestUpdateVisibilityReindexesAssets(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	seedFaceOnAsset(f.repo, owner, id)

	resp, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{IsHidden: ptr(true)})
	require.NoError(t, err)
	assert.True(t, resp.IsHidden)

	assert.Equal(t, 1, f.dispatcher.Count(shared.TypeSearchIndexAsset))
}

func TestUpdateBirthDateNeverReindexes(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	seedFaceOnAsset(f.repo, owner, id)

	resp, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{BirthDate: ptr("1984-03-12")})
	require.NoError(t, err)
	require.NotNil(t, resp.BirthDate)
	assert.Equal(t, "1984-03-12", *resp.BirthDate)

	assert.Empty(t, f.dispatcher.Jobs(), "birth dates are not in the search document")
}

func TestUpdateClearBirthDate(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	birth := date(1984, time.March, 12)
	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice", BirthDate: &birth})

	resp, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{BirthDate: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, resp.BirthDate)
}

func TestUpdateUnchangedValuesDoNotReindex(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	seedFaceOnAsset(f.repo, owner, id)

	_, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{
		Name:     ptr("Alice"),
		IsHidden: ptr(false),
	})
	require.NoError(t, err)

	assert.Empty(t, f.dispatcher.Jobs(), "writing back the current values changes nothing searchable")
}

func TestUpdateUnknownPerson(t *testing.T) {
	f := defaultFixture()

	_, err := f.svc.Update(context.Background(), uuid.New(), uuid.New(), model.UpdatePersonRequest{Name: ptr("Alice")})
	assert.ErrorIs(t, err, model.ErrPersonNotFound)
	assert.Empty(t, f.repo.UpdateCalls, "no write may be attempted for a missing person")
}

func TestUpdateFeatureFace(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	assetID := seedFaceOnAsset(f.repo, owner, id)

	resp, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{FeatureFaceAssetID: &assetID})
	require.NoError(t, err)

	// The face's stored crop is applied immediately.
	assert.Equal(t, "thumbs/faces/"+assetID.String()+".jpeg", resp.ThumbnailPath)

	jobs := f.dispatcher.ByType(shared.TypeGenerateFaceThumbnail)
	require.Len(t, jobs, 1)

	var payload shared.GenerateFaceThumbnailPayload
	require.NoError(t, jobs[0].Decode(&payload))
	assert.Equal(t, assetID, payload.AssetID)
	assert.Equal(t, id, payload.PersonID)
	assert.Equal(t, shared.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 120}, payload.BoundingBox)
	assert.Equal(t, 1000, payload.ImageWidth)
	assert.Equal(t, 800, payload.ImageHeight)
}

func TestUpdateFeatureFaceUnknownFace(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	// An asset with a face that belongs to someone else.
	other := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Bob"})
	assetID := seedFaceOnAsset(f.repo, owner, other)

	_, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{FeatureFaceAssetID: &assetID})
	assert.ErrorIs(t, err, model.ErrFaceNotFound)
	assert.Empty(t, f.repo.UpdateCalls)
	assert.Empty(t, f.dispatcher.Jobs())
}

func TestUpdateRejectsFeatureFaceCombinedWithFields(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	assetID := seedFaceOnAsset(f.repo, owner, id)

	_, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{
		Name:               ptr("Alicia"),
		FeatureFaceAssetID: &assetID,
	})
	require.Error(t, err)
	assert.Empty(t, f.repo.UpdateCalls)
}

func TestUpdateRejectsBadBirthDate(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()
	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})

	for _, birthDate := range []string{"12-03-1984", "not-a-date", "2999-01-01"} {
		_, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{BirthDate: ptr(birthDate)})
		assert.Error(t, err, "birthDate %q must be rejected", birthDate)
	}
	assert.Empty(t, f.repo.UpdateCalls)
}

func TestUpdateDispatchFailureKeepsWrite(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Unknown"})
	seedFaceOnAsset(f.repo, owner, id)

	f.dispatcher.FailTypes = map[string]error{
		shared.TypeSearchIndexAsset: errors.New("queue unavailable"),
	}

	_, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{Name: ptr("Alice")})
	require.Error(t, err)

	// The rename is already durable; the job is a post-condition.
	resp, err := f.svc.GetByID(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", resp.Name)
}

func TestUpdateFeatureFaceDispatchFailureKeepsWrite(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	id := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	assetID := seedFaceOnAsset(f.repo, owner, id)

	f.dispatcher.FailTypes = map[string]error{
		shared.TypeGenerateFaceThumbnail: errors.New("queue unavailable"),
	}

	_, err := f.svc.Update(context.Background(), owner, id, model.UpdatePersonRequest{FeatureFaceAssetID: &assetID})
	require.Error(t, err)

	resp, err := f.svc.GetByID(context.Background(), owner, id)
	require.NoError(t, err)
	assert.Equal(t, "thumbs/faces/"+assetID.String()+".jpeg", resp.ThumbnailPath)
}

func TestBulkUpdateMixedResults(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	alice := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	seedFaceOnAsset(f.repo, owner, alice)
	bob := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Bob"})
	seedFaceOnAsset(f.repo, owner, bob)
	ghost := uuid.New()

	results, err := f.svc.BulkUpdate(context.Background(), owner, model.BulkUpdatePersonRequest{
		People: []model.BulkUpdatePersonItem{
			{ID: alice, Name: ptr("Alicia")},
			{ID: ghost, Name: ptr("Nobody")},
			{ID: bob, IsHidden: ptr(true)},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 3, "one result per input id")

	assert.Equal(t, alice, results[0].ID)
	assert.True(t, results[0].Success)

	assert.Equal(t, ghost, results[1].ID)
	assert.False(t, results[1].Success)
	assert.Equal(t, model.BulkErrorNotFound, results[1].Error)

	assert.Equal(t, bob, results[2].ID)
	assert.True(t, results[2].Success)

	// The missing id never reached the store's write path.
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, f.repo.UpdateCalls)
}

func TestBulkUpdateInvalidItemBecomesUnknown(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	alice := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	assetID := seedFaceOnAsset(f.repo, owner, alice)
	bob := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Bob"})
	seedFaceOnAsset(f.repo, owner, bob)

	results, err := f.svc.BulkUpdate(context.Background(), owner, model.BulkUpdatePersonRequest{
		People: []model.BulkUpdatePersonItem{
			{ID: alice, Name: ptr("Alicia"), FeatureFaceAssetID: &assetID},
			{ID: bob, Name: ptr("Robert")},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.False(t, results[0].Success)
	assert.Equal(t, model.BulkErrorUnknown, results[0].Error)
	assert.True(t, results[1].Success)
}

func TestBulkUpdateStoreErrorBecomesUnknown(t *testing.T) {
	f := defaultFixture()
	owner := uuid.New()

	alice := f.repo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})
	seedFaceOnAsset(f.repo, owner, alice)
	f.repo.UpdateErr = errors.New("connection reset")

	results, err := f.svc.BulkUpdate(context.Background(), owner, model.BulkUpdatePersonRequest{
		People: []model.BulkUpdatePersonItem{{ID: alice, Name: ptr("Alicia")}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, model.BulkErrorUnknown, results[0].Error)
}

func TestBulkUpdateRejectsEmptyBatch(t *testing.T) {
	f := defaultFixture()

	_, err := f.svc.BulkUpdate(context.Background(), uuid.New(), model.BulkUpdatePersonRequest{})
	assert.Error(t, err)
}

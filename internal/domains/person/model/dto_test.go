package model

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestUpdatePersonRequestValidate(t *testing.T) {
	assetID := uuid.New()

	valid := []UpdatePersonRequest{
		{},
		{Name: ptr("Alice")},
		{Name: ptr("")},
		{BirthDate: ptr("1984-03-12")},
		{BirthDate: ptr("")},
		{IsHidden: ptr(true)},
		{Name: ptr("Alice"), BirthDate: ptr("1984-03-12"), IsHidden: ptr(false)},
		{FeatureFaceAssetID: &assetID},
	}
	for i, req := range valid {
		assert.NoError(t, req.Validate(), "request %d should pass", i)
	}

	invalid := []UpdatePersonRequest{
		{Name: ptr(strings.Repeat("a", 256))},
		{BirthDate: ptr("12.03.1984")},
		{BirthDate: ptr("3000-01-01")},
		{FeatureFaceAssetID: &assetID, Name: ptr("Alice")},
		{FeatureFaceAssetID: &assetID, BirthDate: ptr("1984-03-12")},
		{FeatureFaceAssetID: &assetID, IsHidden: ptr(true)},
	}
	for i, req := range invalid {
		assert.Error(t, req.Validate(), "request %d should fail", i)
	}
}

func TestParseBirthDate(t *testing.T) {
	value, clear, err := UpdatePersonRequest{}.ParseBirthDate()
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.False(t, clear)

	value, clear, err = UpdatePersonRequest{BirthDate: ptr("")}.ParseBirthDate()
	require.NoError(t, err)
	assert.Nil(t, value)
	assert.True(t, clear, "an empty string removes the stored date")

	value, clear, err = UpdatePersonRequest{BirthDate: ptr("1984-03-12")}.ParseBirthDate()
	require.NoError(t, err)
	assert.False(t, clear)
	require.NotNil(t, value)
	assert.Equal(t, time.Date(1984, time.March, 12, 0, 0, 0, 0, time.UTC), *value)
}

func TestBulkUpdatePersonRequestValidate(t *testing.T) {
	assert.Error(t, BulkUpdatePersonRequest{}.Validate())
	assert.Error(t, BulkUpdatePersonRequest{People: []BulkUpdatePersonItem{}}.Validate())

	ok := BulkUpdatePersonRequest{People: []BulkUpdatePersonItem{{ID: uuid.New()}}}
	assert.NoError(t, ok.Validate())

	tooMany := BulkUpdatePersonRequest{People: make([]BulkUpdatePersonItem, 1001)}
	assert.Error(t, tooMany.Validate())
}

func TestMergePersonRequestValidate(t *testing.T) {
	assert.Error(t, MergePersonRequest{}.Validate())
	assert.NoError(t, MergePersonRequest{IDs: []uuid.UUID{uuid.New()}}.Validate())

	tooMany := MergePersonRequest{IDs: make([]uuid.UUID, 1001)}
	assert.Error(t, tooMany.Validate())
}

func TestNewPersonResponse(t *testing.T) {
	birth := time.Date(1984, time.March, 12, 0, 0, 0, 0, time.UTC)
	person := &Person{
		ID:            uuid.New(),
		Name:          "Alice",
		BirthDate:     &birth,
		ThumbnailPath: "thumbs/people/a.jpeg",
		IsHidden:      true,
	}

	resp := NewPersonResponse(person)
	assert.Equal(t, person.ID, resp.ID)
	assert.Equal(t, "Alice", resp.Name)
	require.NotNil(t, resp.BirthDate)
	assert.Equal(t, "1984-03-12", *resp.BirthDate)
	assert.Equal(t, "thumbs/people/a.jpeg", resp.ThumbnailPath)
	assert.True(t, resp.IsHidden)

	unnamed := NewPersonResponse(&Person{ID: uuid.New()})
	assert.Equal(t, "", unnamed.Name, "name renders as an empty string, never null")
	assert.Nil(t, unnamed.BirthDate)
}

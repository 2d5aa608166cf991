package job

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault-backend/internal/config"
	mediaModel "photovault-backend/internal/domains/media/model"
	mediaRepository "photovault-backend/internal/domains/media/repository"
	"photovault-backend/internal/domains/person/model"
	"photovault-backend/internal/domains/person/repository"
	"photovault-backend/internal/domains/person/service"
	"photovault-backend/internal/infrastructure/queue"
	"photovault-backend/internal/infrastructure/storage"
	"photovault-backend/internal/shared"
	"photovault-backend/pkg/cache"
)

func mustTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, data)
}

func TestGenerateThumbnailHandler(t *testing.T) {
	personRepo := repository.NewMemoryPersonRepository()
	assetRepo := mediaRepository.NewMemoryAssetRepository()
	blob := storage.NewMemoryStorage()

	owner := uuid.New()
	personID := personRepo.AddPerson(model.Person{OwnerID: owner, Name: "Alice"})

	assetID := uuid.New()
	assetRepo.Add(mediaModel.Asset{
		ID:           assetID,
		OwnerID:      owner,
		Type:         mediaModel.AssetTypeImage,
		OriginalPath: "originals/" + assetID.String() + ".jpeg",
	})

	var buf bytes.Buffer
	source := imaging.New(400, 320, color.NRGBA{R: 200, G: 180, B: 160, A: 255})
	require.NoError(t, imaging.Encode(&buf, source, imaging.JPEG))
	require.NoError(t, blob.Upload(context.Background(), "originals/"+assetID.String()+".jpeg", buf.Bytes(), "image/jpeg"))

	h := NewGenerateThumbnailHandler(service.NewThumbnailService(
		personRepo, assetRepo, blob, storage.NewImageProcessor(64),
	))

	task := mustTask(t, shared.TypeGenerateFaceThumbnail, shared.GenerateFaceThumbnailPayload{
		AssetID:     assetID,
		PersonID:    personID,
		BoundingBox: shared.BoundingBox{X1: 100, Y1: 80, X2: 300, Y2: 240},
		ImageWidth:  400,
		ImageHeight: 320,
	})

	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.True(t, blob.Has(service.PersonThumbnailKey(personID)))
}

func TestGenerateThumbnailHandlerMalformedPayload(t *testing.T) {
	h := NewGenerateThumbnailHandler(service.NewThumbnailService(
		repository.NewMemoryPersonRepository(),
		mediaRepository.NewMemoryAssetRepository(),
		storage.NewMemoryStorage(),
		storage.NewImageProcessor(64),
	))

	task := asynq.NewTask(shared.TypeGenerateFaceThumbnail, []byte("{not json"))
	err := h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCleanupHandler(t *testing.T) {
	repo := repository.NewMemoryPersonRepository()
	orphan := repo.AddPerson(model.Person{OwnerID: uuid.New(), Name: "Ghost"})

	svc := service.NewPersonService(repo, storage.NewMemoryStorage(), queue.NewRecorder(), cache.NewMemoryCache(), config.PeopleConfig{MinFaceCount: 1})
	h := NewCleanupHandler(svc)

	task := mustTask(t, shared.TypePersonCleanup, shared.PersonCleanupPayload{})
	require.NoError(t, h.ProcessTask(context.Background(), task))
	assert.False(t, repo.HasPerson(orphan))
}

func TestCleanupHandlerStoreError(t *testing.T) {
	repo := repository.NewMemoryPersonRepository()
	repo.OrphansErr = assert.AnError

	svc := service.NewPersonService(repo, storage.NewMemoryStorage(), queue.NewRecorder(), cache.NewMemoryCache(), config.PeopleConfig{MinFaceCount: 1})
	h := NewCleanupHandler(svc)

	task := mustTask(t, shared.TypePersonCleanup, shared.PersonCleanupPayload{})
	assert.Error(t, h.ProcessTask(context.Background(), task))
}

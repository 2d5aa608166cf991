package job

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault-backend/internal/infrastructure/storage"
	"photovault-backend/internal/shared"
)

func TestDeleteFilesHandler(t *testing.T) {
	blob := storage.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, blob.Upload(ctx, "thumbs/people/a.jpeg", []byte("a"), "image/jpeg"))
	require.NoError(t, blob.Upload(ctx, "thumbs/people/b.jpeg", []byte("b"), "image/jpeg"))

	payload, err := json.Marshal(shared.DeleteFilesPayload{Files: []string{"thumbs/people/a.jpeg", "thumbs/people/b.jpeg"}})
	require.NoError(t, err)

	h := NewDeleteFilesHandler(blob)
	require.NoError(t, h.ProcessTask(ctx, asynq.NewTask(shared.TypeDeleteFiles, payload)))

	assert.False(t, blob.Has("thumbs/people/a.jpeg"))
	assert.False(t, blob.Has("thumbs/people/b.jpeg"))
}

func TestDeleteFilesHandlerEmptyPayload(t *testing.T) {
	h := NewDeleteFilesHandler(storage.NewMemoryStorage())

	payload, err := json.Marshal(shared.DeleteFilesPayload{})
	require.NoError(t, err)

	assert.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeDeleteFiles, payload)))
}

func TestDeleteFilesHandlerMalformedPayload(t *testing.T) {
	h := NewDeleteFilesHandler(storage.NewMemoryStorage())

	task := asynq.NewTask(shared.TypeDeleteFiles, []byte("{not json"))
	err := h.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDeleteFilesHandlerRemoveError(t *testing.T) {
	blob := storage.NewMemoryStorage()
	blob.RemoveErr = assert.AnError

	payload, err := json.Marshal(shared.DeleteFilesPayload{Files: []string{"thumbs/people/a.jpeg"}})
	require.NoError(t, err)

	h := NewDeleteFilesHandler(blob)
	assert.Error(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeDeleteFiles, payload)))
}

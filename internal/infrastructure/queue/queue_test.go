package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photovault-backend/internal/shared"
)

func optionValue(opts []asynq.Option, optType asynq.OptionType) (interface{}, bool) {
	for _, opt := range opts {
		if opt.Type() == optType {
			return opt.Value(), true
		}
	}
	return nil, false
}

func TestTaskOptionsQueueAssignment(t *testing.T) {
	cases := []struct {
		taskType string
		queue    string
		maxRetry int
	}{
		{shared.TypeGenerateFaceThumbnail, shared.QueueDefault, 3},
		{shared.TypeSearchIndexAsset, shared.QueueLow, 5},
		{shared.TypeSearchRemoveFace, shared.QueueLow, 5},
		{shared.TypeDeleteFiles, shared.QueueLow, 5},
		{shared.TypePersonCleanup, shared.QueueLow, 1},
	}

	for _, tc := range cases {
		opts := taskOptions(tc.taskType)

		queue, ok := optionValue(opts, asynq.QueueOpt)
		require.True(t, ok, "%s must pin a queue", tc.taskType)
		assert.Equal(t, tc.queue, queue, "queue for %s", tc.taskType)

		retry, ok := optionValue(opts, asynq.MaxRetryOpt)
		require.True(t, ok, "%s must pin a retry limit", tc.taskType)
		assert.Equal(t, tc.maxRetry, retry, "retries for %s", tc.taskType)
	}
}

func TestTaskOptionsUnknownTypeFallsBack(t *testing.T) {
	opts := taskOptions("some:future_job")

	queue, ok := optionValue(opts, asynq.QueueOpt)
	require.True(t, ok)
	assert.Equal(t, shared.QueueDefault, queue)
}

func TestRecorderCapturesPayloads(t *testing.T) {
	r := NewRecorder()

	first := shared.SearchRemoveFacePayload{AssetID: uuid.New(), PersonID: uuid.New()}
	second := shared.SearchRemoveFacePayload{AssetID: uuid.New(), PersonID: uuid.New()}

	require.NoError(t, r.Dispatch(context.Background(), shared.TypeSearchRemoveFace, first))
	require.NoError(t, r.Dispatch(context.Background(), shared.TypeDeleteFiles, shared.DeleteFilesPayload{Files: []string{"a"}}))
	require.NoError(t, r.Dispatch(context.Background(), shared.TypeSearchRemoveFace, second))

	assert.Len(t, r.Jobs(), 3)
	assert.Equal(t, 2, r.Count(shared.TypeSearchRemoveFace))

	jobs := r.ByType(shared.TypeSearchRemoveFace)
	require.Len(t, jobs, 2)

	var decoded shared.SearchRemoveFacePayload
	require.NoError(t, jobs[0].Decode(&decoded))
	assert.Equal(t, first, decoded)
	require.NoError(t, jobs[1].Decode(&decoded))
	assert.Equal(t, second, decoded)
}

func TestRecorderFailTypes(t *testing.T) {
	r := NewRecorder()
	r.FailTypes = map[string]error{shared.TypeDeleteFiles: errors.New("queue unavailable")}

	err := r.Dispatch(context.Background(), shared.TypeDeleteFiles, shared.DeleteFilesPayload{Files: []string{"a"}})
	assert.Error(t, err)
	assert.NoError(t, r.Dispatch(context.Background(), shared.TypeSearchRemoveFace, shared.SearchRemoveFacePayload{}))

	assert.Zero(t, r.Count(shared.TypeDeleteFiles))
	assert.Equal(t, 1, r.Count(shared.TypeSearchRemoveFace))
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"photovault-backend/internal/config"
	"photovault-backend/internal/shared"
)

// Dispatcher hands job descriptors to the background runtime. Enqueueing is
// the whole contract: execution happens at least once, later, off the
// request path, with no ordering guarantee between distinct job types.
type Dispatcher interface {
	Dispatch(ctx context.Context, typeName string, payload interface{}) error
}

// AsynqDispatcher implements Dispatcher on an asynq client.
type AsynqDispatcher struct {
	client *asynq.Client
}

var _ Dispatcher = (*AsynqDispatcher)(nil)

func NewAsynqDispatcher(cfg config.RedisConfig) *AsynqDispatcher {
	return &AsynqDispatcher{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Host,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, typeName string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", typeName, err)
	}

	task := asynq.NewTask(typeName, data)
	if _, err := d.client.EnqueueContext(ctx, task, taskOptions(typeName)...); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", typeName, err)
	}
	return nil
}

func (d *AsynqDispatcher) Close() error {
	return d.client.Close()
}

// taskOptions picks queue, retry, and timeout per task type. Thumbnail
// rendering is user-visible so it outranks the search and file sweeps.
func taskOptions(typeName string) []asynq.Option {
	switch typeName {
	case shared.TypeGenerateFaceThumbnail:
		return []asynq.Option{
			asynq.Queue(shared.QueueDefault),
			asynq.MaxRetry(3),
			asynq.Timeout(2 * time.Minute),
		}
	case shared.TypeSearchIndexAsset:
		return []asynq.Option{
			asynq.Queue(shared.QueueLow),
			asynq.MaxRetry(5),
			asynq.Timeout(5 * time.Minute),
		}
	case shared.TypeSearchRemoveFace:
		return []asynq.Option{
			asynq.Queue(shared.QueueLow),
			asynq.MaxRetry(5),
			asynq.Timeout(time.Minute),
		}
	case shared.TypeDeleteFiles:
		return []asynq.Option{
			asynq.Queue(shared.QueueLow),
			asynq.MaxRetry(5),
			asynq.Timeout(5 * time.Minute),
		}
	case shared.TypePersonCleanup:
		return []asynq.Option{
			asynq.Queue(shared.QueueLow),
			asynq.MaxRetry(1),
			asynq.Timeout(10 * time.Minute),
		}
	default:
		return []asynq.Option{
			asynq.Queue(shared.QueueDefault),
			asynq.MaxRetry(3),
		}
	}
}

package storage

import (
	"context"
	"io"
)

// ReadStream is an open blob handle ready to be streamed to a client.
// Callers own the Reader and must close it.
type ReadStream struct {
	Reader      io.ReadCloser
	ContentType string
	Size        int64
}

// Blob is the object-storage contract used by services and job handlers.
// Paths are object keys inside the configured bucket, never public URLs.
type Blob interface {
	OpenReadStream(ctx context.Context, key, contentType string) (*ReadStream, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	RemoveObjects(ctx context.Context, keys []string) error
}

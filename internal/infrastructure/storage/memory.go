package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStorage is an in-memory Blob used by tests. It records read-stream
// opens so tests can assert the blob layer was (or was not) touched.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	OpenCalls []string

	// Error injection for failure-path tests.
	OpenErr     error
	UploadErr   error
	DownloadErr error
	RemoveErr   error
}

type memoryObject struct {
	data        []byte
	contentType string
}

var _ Blob = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memoryObject)}
}

func (s *MemoryStorage) OpenReadStream(ctx context.Context, key, contentType string) (*ReadStream, error) {
	s.mu.Lock()
	s.OpenCalls = append(s.OpenCalls, key)
	s.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}

	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}

	if obj.contentType != "" {
		contentType = obj.contentType
	}
	return &ReadStream{
		Reader:      io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (s *MemoryStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if s.UploadErr != nil {
		return s.UploadErr
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.objects[key] = memoryObject{data: buf, contentType: contentType}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if s.DownloadErr != nil {
		return nil, s.DownloadErr
	}

	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}

	buf := make([]byte, len(obj.data))
	copy(buf, obj.data)
	return buf, nil
}

func (s *MemoryStorage) Remove(ctx context.Context, key string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}

	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) RemoveObjects(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Has reports whether an object exists, for test assertions.
func (s *MemoryStorage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok
}

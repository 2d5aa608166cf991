package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// RecordedJob is one captured job descriptor. The payload is kept as the
// marshaled bytes the real dispatcher would enqueue.
type RecordedJob struct {
	Type    string
	Payload []byte
}

// Decode unmarshals the captured payload into dest.
func (j RecordedJob) Decode(dest interface{}) error {
	return json.Unmarshal(j.Payload, dest)
}

// Recorder is a Dispatcher that captures job descriptors instead of
// enqueueing them, so tests can assert on emitted side effects.
type Recorder struct {
	mu   sync.Mutex
	jobs []RecordedJob

	// Err fails every Dispatch call when set.
	Err error
	// FailTypes fails Dispatch for specific task types.
	FailTypes map[string]error
}

var _ Dispatcher = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Dispatch(ctx context.Context, typeName string, payload interface{}) error {
	if r.Err != nil {
		return r.Err
	}
	if err, ok := r.FailTypes[typeName]; ok {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", typeName, err)
	}

	r.mu.Lock()
	r.jobs = append(r.jobs, RecordedJob{Type: typeName, Payload: data})
	r.mu.Unlock()
	return nil
}

// Jobs returns every captured job in dispatch order.
func (r *Recorder) Jobs() []RecordedJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedJob(nil), r.jobs...)
}

// ByType returns the captured jobs of one type, in dispatch order.
func (r *Recorder) ByType(typeName string) []RecordedJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	var jobs []RecordedJob
	for _, j := range r.jobs {
		if j.Type == typeName {
			jobs = append(jobs, j)
		}
	}
	return jobs
}

// Count returns how many jobs of one type were dispatched.
func (r *Recorder) Count(typeName string) int {
	return len(r.ByType(typeName))
}

// Reset drops every captured job.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.jobs = nil
	r.mu.Unlock()
}

package eventbus

import (
	"context"
	"sync"
)

// Published is one call captured by a Recorder.
type Published struct {
	Topic   string
	Payload any
}

// Recorder is an in-memory Publisher that keeps every call. Err, when set,
// is returned from PublishJSON after the call is recorded.
type Recorder struct {
	mu    sync.Mutex
	calls []Published
	Err   error
}

func (r *Recorder) PublishJSON(_ context.Context, topic string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Published{Topic: topic, Payload: payload})
	return r.Err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Published(nil), r.calls...)
}

// Topics returns the topics published so far, in order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Topic
	}
	return out
}

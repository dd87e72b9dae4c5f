package messaging

import "sync"

// PropertyChangedMessage broadcasts that an observable property on Sender
// transitioned from OldValue to NewValue. Generated setters send it when the
// property is marked for broadcast.
type PropertyChangedMessage[T any] struct {
	Sender       any
	PropertyName string
	OldValue     T
	NewValue     T
}

// RequestMessage is a message a recipient can reply to. The first reply wins;
// later replies are ignored.
type RequestMessage[T any] struct {
	mu       sync.Mutex
	response T
	replied  bool
}

// Reply records the response. Replying more than once is a no-op.
func (r *RequestMessage[T]) Reply(response T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replied {
		return
	}
	r.response = response
	r.replied = true
}

// Response returns the recorded response and whether any recipient replied.
func (r *RequestMessage[T]) Response() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response, r.replied
}

package observable

import (
	"sync"

	"github.com/beacon-tools/beacon/runtime/messaging"
)

// Recipient is the embeddable base for objects that broadcast property
// changes. A Recipient with no messenger set broadcasts through the shared
// default messenger.
type Recipient struct {
	mu        sync.Mutex
	messenger *messaging.Messenger
}

// SetMessenger routes this object's broadcasts through m.
func (r *Recipient) SetMessenger(m *messaging.Messenger) {
	r.mu.Lock()
	r.messenger = m
	r.mu.Unlock()
}

// Messenger returns the messenger broadcasts go through.
func (r *Recipient) Messenger() *messaging.Messenger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.messenger == nil {
		return messaging.Default()
	}
	return r.messenger
}

// Broadcaster is what a type must provide for the broadcast flag; embedding
// Recipient satisfies it.
type Broadcaster interface {
	Messenger() *messaging.Messenger
}

// Broadcast sends a PropertyChangedMessage for sender's property through the
// sender's messenger. Generated setters call it after the assignment when the
// property is marked for broadcast.
func Broadcast[T any](sender Broadcaster, property string, oldValue, newValue T) {
	m := sender.Messenger()
	if m == nil {
		return
	}
	messaging.Send(m, messaging.PropertyChangedMessage[T]{
		Sender:       sender,
		PropertyName: property,
		OldValue:     oldValue,
		NewValue:     newValue,
	})
}

package observable

import "sync"

// Notifier is the change-notification surface generated setters call into.
// Embed Object to satisfy it.
type Notifier interface {
	RaisePropertyChanging(args *ChangingArgs)
	RaisePropertyChanged(args *ChangedArgs)
}

// Object is the embeddable change-notification base. The zero value is ready
// to use. Listener callbacks run synchronously on the goroutine that raised
// the notification, outside the internal lock.
type Object struct {
	mu       sync.Mutex
	changing []func(*ChangingArgs)
	changed  []func(*ChangedArgs)
}

// AddChangingListener subscribes fn to pre-change notifications.
func (o *Object) AddChangingListener(fn func(*ChangingArgs)) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.changing = append(o.changing, fn)
	o.mu.Unlock()
}

// AddChangedListener subscribes fn to post-change notifications.
func (o *Object) AddChangedListener(fn func(*ChangedArgs)) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	o.changed = append(o.changed, fn)
	o.mu.Unlock()
}

// RaisePropertyChanging fires pre-change listeners. Listeners added while a
// notification is in flight are not invoked for that notification.
func (o *Object) RaisePropertyChanging(args *ChangingArgs) {
	o.mu.Lock()
	listeners := make([]func(*ChangingArgs), len(o.changing))
	copy(listeners, o.changing)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(args)
	}
}

// RaisePropertyChanged fires post-change listeners.
func (o *Object) RaisePropertyChanged(args *ChangedArgs) {
	o.mu.Lock()
	listeners := make([]func(*ChangedArgs), len(o.changed))
	copy(listeners, o.changed)
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(args)
	}
}

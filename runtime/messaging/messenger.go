package messaging

import (
	"reflect"
	"sync"
	"weak"
)

// Handler receives a dispatched message together with the recipient it was
// registered for. The recipient is passed in rather than captured so that
// storing a handler never keeps the recipient alive.
type Handler[R any, M any] func(recipient *R, message M)

// DefaultChannel is the channel used by Register, Send, Unregister and
// IsRegistered. Use the *On variants to subscribe the same recipient to the
// same message type more than once.
var DefaultChannel = defaultChannel{}

type defaultChannel struct{}

func (defaultChannel) String() string { return "default" }

// channelKey identifies one registration on a recipient: the exact message
// type plus the channel value.
type channelKey struct {
	msgType reflect.Type
	channel any
}

// handlerFunc is the type-erased form a Handler is stored in.
type handlerFunc func(recipient any, message any)

// slot is one arena cell. A free slot has a nil key and participates in the
// intrusive free list through nextFree. gen records when the slot was last
// allocated; dispatches skip slots younger than themselves, so free-list reuse
// during a Send can never hand the same dispatch a recipient twice.
type slot struct {
	key      any // comparable weak pointer value; nil when free
	gen      uint64
	resolve  func() any
	handlers map[channelKey]handlerFunc
	nextFree int
}

// Messenger is an in-process publish/subscribe registry whose recipients are
// held by weak reference: registering for messages never prevents a recipient
// from being garbage collected. Entries whose recipient has been collected
// are evicted lazily while the registry is enumerated for dispatch.
//
// All methods are safe for concurrent use. Handlers run outside the internal
// lock, so they may register and unregister recipients freely, including
// during a Send on the same Messenger.
type Messenger struct {
	mu       sync.Mutex
	slots    []slot
	freeHead int
	gen      uint64      // bumped on every slot allocation
	index    map[any]int // weak pointer value -> slot index
}

// New creates an empty Messenger.
func New() *Messenger {
	return &Messenger{
		freeHead: -1,
		index:    make(map[any]int),
	}
}

// defaultMessenger is the shared process-wide instance.
var defaultMessenger = New()

// Default returns the shared process-wide Messenger.
func Default() *Messenger { return defaultMessenger }

// Register subscribes recipient to messages of type M on the default channel.
// It reports false, without modifying the registry, if the recipient already
// has a handler for M on that channel. Duplicate registration is a caller
// error; the caller decides whether it is fatal.
func Register[M any, R any](m *Messenger, recipient *R, handler Handler[R, M]) bool {
	return RegisterOn(m, recipient, DefaultChannel, handler)
}

// RegisterOn is Register with an explicit channel. The channel value must be
// comparable; it disambiguates multiple subscriptions of the same message
// type on the same recipient.
func RegisterOn[M any, R any](m *Messenger, recipient *R, channel any, handler Handler[R, M]) bool {
	if recipient == nil {
		panic("messaging: Register called with nil recipient")
	}
	if handler == nil {
		panic("messaging: Register called with nil handler")
	}

	wp := weak.Make(recipient)
	resolve := func() any {
		if p := wp.Value(); p != nil {
			return p
		}
		return nil
	}
	// The wrapper closes over the handler only, never the recipient.
	wrapped := func(rec any, msg any) {
		handler(rec.(*R), msg.(M))
	}

	return m.tryAdd(wp, resolve, channelKey{msgType: typeFor[M](), channel: channel}, wrapped)
}

// Send dispatches message to every live recipient registered for type M on
// the default channel and returns the message. Dispatch order across
// recipients is unspecified, but every recipient that is alive and registered
// when the dispatch begins is invoked at most once. Recipients registered
// while the dispatch is running are not delivered to until the next Send,
// even when they land in a reused arena slot.
func Send[M any](m *Messenger, message M) M {
	return SendOn(m, message, DefaultChannel)
}

// SendOn is Send with an explicit channel.
func SendOn[M any](m *Messenger, message M, channel any) M {
	ck := channelKey{msgType: typeFor[M](), channel: channel}

	// Lazy enumeration: each step takes the lock, resolves one weak
	// reference, and releases the lock before the handler runs. Handlers may
	// therefore mutate the registry mid-dispatch without deadlock, and dead
	// entries are evicted as they are encountered. Slots allocated after
	// start belong to registrations made mid-dispatch and are skipped.
	m.mu.Lock()
	start := m.gen
	m.mu.Unlock()

	cursor := 0
	for {
		rec, h, ok := m.nextDelivery(&cursor, start, ck)
		if !ok {
			break
		}
		h(rec, message)
	}
	return message
}

// Unregister removes the recipient's handler for message type M on the
// default channel. Removing a registration that does not exist is a no-op.
func Unregister[M any, R any](m *Messenger, recipient *R) {
	UnregisterOn[M](m, recipient, DefaultChannel)
}

// UnregisterOn is Unregister with an explicit channel.
func UnregisterOn[M any, R any](m *Messenger, recipient *R, channel any) {
	if recipient == nil {
		return
	}
	m.removeChannel(weak.Make(recipient), channelKey{msgType: typeFor[M](), channel: channel})
}

// UnregisterAll removes every registration held by recipient, across all
// message types and channels. Unknown recipients are a no-op.
func UnregisterAll[R any](m *Messenger, recipient *R) {
	if recipient == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if idx, ok := m.index[weak.Make(recipient)]; ok {
		m.freeLocked(idx)
	}
}

// IsRegistered reports whether recipient has a handler for message type M on
// the default channel. A recipient that was never registered, or whose entry
// has been evicted, is not registered.
func IsRegistered[M any, R any](m *Messenger, recipient *R) bool {
	return IsRegisteredOn[M](m, recipient, DefaultChannel)
}

// IsRegisteredOn is IsRegistered with an explicit channel.
func IsRegisteredOn[M any, R any](m *Messenger, recipient *R, channel any) bool {
	if recipient == nil {
		return false
	}
	ck := channelKey{msgType: typeFor[M](), channel: channel}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[weak.Make(recipient)]
	if !ok {
		return false
	}
	_, ok = m.slots[idx].handlers[ck]
	return ok
}

// Cleanup eagerly evicts entries whose recipient has been collected. Eviction
// otherwise happens lazily during Send.
func (m *Messenger) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for idx := range m.slots {
		s := &m.slots[idx]
		if s.key != nil && s.resolve() == nil {
			m.freeLocked(idx)
		}
	}
}

// Reset drops every registration.
func (m *Messenger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots = nil
	m.freeHead = -1
	m.index = make(map[any]int)
}

// Len returns the number of live recipients currently tracked, evicting dead
// entries as a side effect.
func (m *Messenger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for idx := range m.slots {
		s := &m.slots[idx]
		if s.key == nil {
			continue
		}
		if s.resolve() == nil {
			m.freeLocked(idx)
			continue
		}
		n++
	}
	return n
}

// tryAdd inserts a handler under the registration key, allocating an arena
// slot for the recipient on first registration.
func (m *Messenger) tryAdd(key any, resolve func() any, ck channelKey, h handlerFunc) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[key]
	if !ok {
		idx = m.allocLocked()
		m.gen++
		m.slots[idx] = slot{
			key:      key,
			gen:      m.gen,
			resolve:  resolve,
			handlers: make(map[channelKey]handlerFunc, 1),
			nextFree: -1,
		}
		m.index[key] = idx
	}

	s := &m.slots[idx]
	if _, dup := s.handlers[ck]; dup {
		return false
	}
	s.handlers[ck] = h
	return true
}

// nextDelivery advances the enumeration cursor to the next live recipient
// holding a handler for ck. The cursor is advanced before anything else
// happens, so a handler that removes the yielded slot cannot derail the scan.
// Slots allocated after the dispatch's start stamp are skipped: a recipient
// re-registered by a handler must not be delivered to by the dispatch that
// invoked the handler, even if it reuses an index the cursor has not reached.
// Each weak reference is resolved exactly once per step; a slot whose
// recipient has been collected is evicted on the spot.
func (m *Messenger) nextDelivery(cursor *int, start uint64, ck channelKey) (any, handlerFunc, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for *cursor < len(m.slots) {
		idx := *cursor
		*cursor = idx + 1

		s := &m.slots[idx]
		if s.key == nil {
			continue
		}
		if s.gen > start {
			continue
		}
		rec := s.resolve()
		if rec == nil {
			m.freeLocked(idx)
			continue
		}
		h, ok := s.handlers[ck]
		if !ok {
			continue
		}
		return rec, h, true
	}
	return nil, nil, false
}

// removeChannel removes one (recipient, channel, message type) registration,
// freeing the slot when its handler map empties.
func (m *Messenger) removeChannel(key any, ck channelKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.index[key]
	if !ok {
		return
	}
	s := &m.slots[idx]
	delete(s.handlers, ck)
	if len(s.handlers) == 0 {
		m.freeLocked(idx)
	}
}

// freeLocked returns a slot to the free list and drops its index entry.
// Freeing a slot twice indicates a bookkeeping bug, not a runtime condition.
func (m *Messenger) freeLocked(idx int) {
	s := &m.slots[idx]
	if s.key == nil {
		panic("messaging: free of an already-free recipient slot")
	}
	delete(m.index, s.key)
	m.slots[idx] = slot{nextFree: m.freeHead}
	m.freeHead = idx
}

// allocLocked pops a slot off the free list, growing the arena when empty.
func (m *Messenger) allocLocked() int {
	if m.freeHead >= 0 {
		idx := m.freeHead
		m.freeHead = m.slots[idx].nextFree
		return idx
	}
	m.slots = append(m.slots, slot{nextFree: -1})
	return len(m.slots) - 1
}

// typeFor returns the reflect.Type a Send or Register call dispatches on.
// Dispatch is by the static type argument M, so an interface type argument
// matches only registrations made with the same interface type.
func typeFor[M any]() reflect.Type {
	return reflect.TypeOf((*M)(nil)).Elem()
}

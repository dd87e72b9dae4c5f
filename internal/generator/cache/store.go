package cache

import (
	"sync"
	"time"
)

// Entry is one cached emission: the synthesized source for a group of
// records, keyed by the group's structural hash.
type Entry struct {
	GroupKey string    `msgpack:"group_key"`
	Hash     string    `msgpack:"hash"`
	Filename string    `msgpack:"filename"`
	Source   string    `msgpack:"source"`
	CachedAt time.Time `msgpack:"cached_at"`
}

// Store caches emitted source per owning type. A lookup hits only when the
// group's structural hash matches; a type whose records changed in any way
// misses and re-emits.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry // group key -> entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Get returns the cached source for a group key when its hash still
// matches.
func (s *Store) Get(groupKey, hash string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[groupKey]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e, true
}

// Set stores an emission result.
func (s *Store) Set(groupKey, hash, filename, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[groupKey] = &Entry{
		GroupKey: groupKey,
		Hash:     hash,
		Filename: filename,
		Source:   source,
		CachedAt: time.Now(),
	}
}

// Invalidate removes one group.
func (s *Store) Invalidate(groupKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, groupKey)
}

// Prune drops entries older than maxAge and returns how many were removed.
// Watch mode calls this periodically so long sessions do not accumulate
// entries for deleted types.
func (s *Store) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, e := range s.entries {
		if e.CachedAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached groups.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// snapshot copies the entries for persistence.
func (s *Store) snapshot() map[string]*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Entry, len(s.entries))
	for k, v := range s.entries {
		e := *v
		out[k] = &e
	}
	return out
}

// restore replaces the entries from a persisted snapshot.
func (s *Store) restore(entries map[string]*Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// formatVersion bumps whenever the on-disk layout changes.
const formatVersion = 1

// cacheFileName is the persisted cache inside the cache directory.
const cacheFileName = "groups.msgpack"

// diskCache is the serialized form of a store.
type diskCache struct {
	Version     int               `msgpack:"version"`
	Fingerprint string            `msgpack:"fingerprint"`
	SavedAt     time.Time         `msgpack:"saved_at"`
	Entries     map[string]*Entry `msgpack:"entries"`
}

// Save persists the store under dir. The fingerprint binds the cache to a
// tool version and configuration; Load discards the file when it differs.
func Save(s *Store, dir, fingerprint string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := msgpack.Marshal(&diskCache{
		Version:     formatVersion,
		Fingerprint: fingerprint,
		SavedAt:     time.Now(),
		Entries:     s.snapshot(),
	})
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	// Write then rename so a crash never leaves a torn cache file.
	tmp := filepath.Join(dir, cacheFileName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return os.Rename(tmp, filepath.Join(dir, cacheFileName))
}

// Load restores a persisted store. A missing file, an undecodable file, or
// a fingerprint mismatch all yield an empty store; a stale cache is never
// an error, only a cold start.
func Load(dir, fingerprint string) (*Store, error) {
	s := NewStore()

	data, err := os.ReadFile(filepath.Join(dir, cacheFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var dc diskCache
	if err := msgpack.Unmarshal(data, &dc); err != nil {
		return s, nil
	}
	if dc.Version != formatVersion || dc.Fingerprint != fingerprint {
		return s, nil
	}
	if dc.Entries != nil {
		s.restore(dc.Entries)
	}
	return s, nil
}

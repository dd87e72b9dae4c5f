// Package cache provides incremental generation and persistence. It keys
// emitted source on structural record hashes, so an unchanged declaration
// never re-emits, and persists results across runs with a fingerprint that
// invalidates on tool or configuration changes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// FileHasher computes content digests for cache keys and fingerprints.
type FileHasher struct{}

func NewFileHasher() *FileHasher {
	return &FileHasher{}
}

// HashFile digests a file's contents without loading it whole.
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := sha256.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashContent digests a byte slice.
func (fh *FileHasher) HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashString digests a string.
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

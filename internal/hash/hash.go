// Package hash computes content fingerprints for build plans.
//
// A plan fingerprint covers both the plan structure and the bytes of every
// source file it names, so two runs with equal fingerprints compiled the same
// inputs in the same order with the same flags.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"os"
)

// Hasher hashes files and byte slices.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)

	// HashBytes computes the hash of data.
	HashBytes(data []byte) string
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// HashFile streams the file through SHA-256.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	sum := sha256.New()
	if _, err := io.Copy(sum, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// HashBytes returns the hex SHA-256 of data.
func (h *SHA256Hasher) HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FakeHasher returns canned file hashes and a cheap FNV byte hash.
type FakeHasher struct {
	files map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{files: make(map[string]string)}
}

// SetHash sets the hash for a specific path.
func (h *FakeHasher) SetHash(path, hash string) {
	h.files[path] = hash
}

// HashFile returns the canned hash for path, or "fakehash".
func (h *FakeHasher) HashFile(path string) (string, error) {
	if hash, ok := h.files[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}

// HashBytes returns a deterministic, content-sensitive string.
func (h *FakeHasher) HashBytes(data []byte) string {
	sum := fnv.New64a()
	_, _ = sum.Write(data)
	return fmt.Sprintf("fake-%016x", sum.Sum64())
}

package etag

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound indicates no validator is stored for the URL.
var ErrNotFound = errors.New("validator not found")

// Store maps request URLs to their last known ETag validator.
// At most one validator is kept per URL; Set overwrites.
type Store interface {
	// Get returns the validator for url, or ErrNotFound.
	Get(ctx context.Context, url string) (string, error)

	// Set stores or overwrites the validator for url.
	Set(ctx context.Context, url, validator string) error
}

// MemoryStore is a process-local Store. Entries live for the lifetime
// of the store and are never evicted.
type MemoryStore struct {
	mu         sync.RWMutex
	validators map[string]string
}

// NewMemoryStore creates an empty in-memory validator store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		validators: make(map[string]string),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, url string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	validator, ok := s.validators[url]
	if !ok {
		return "", ErrNotFound
	}
	return validator, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, url, validator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.validators[url] = validator
	return nil
}

// Len returns the number of stored validators.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.validators)
}

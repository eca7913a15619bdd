package fulfillment

import (
	"context"
	"sync"
)

// IdempotencyStore maps an order id to the tracking number issued for it.
// GetOrCreate must be atomic: concurrent callers for the same key observe
// the same value, and only one generated value is ever stored per key.
type IdempotencyStore interface {
	GetOrCreate(ctx context.Context, key string, generate func() (string, error)) (string, error)
}

// MemoryStore is an in-process IdempotencyStore. Its lifetime is the
// lifetime of the value; entries are never evicted.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]string),
	}
}

// GetOrCreate returns the stored value for key, generating and storing one
// under the lock if none exists.
func (s *MemoryStore) GetOrCreate(ctx context.Context, key string, generate func() (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.entries[key]; ok {
		return v, nil
	}
	v, err := generate()
	if err != nil {
		return "", err
	}
	s.entries[key] = v
	return v, nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ IdempotencyStore = (*MemoryStore)(nil)

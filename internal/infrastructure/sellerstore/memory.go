package sellerstore

import (
	"context"
	"maps"
	"sync"
)

// MemoryStore keeps the seller mapping in process memory only. It is used
// when persistence is disabled and as the test double for the other stores.
type MemoryStore struct {
	data  map[string]string
	saves int
	mutex sync.RWMutex
}

// NewMemoryStore creates a new in-memory store, optionally seeded
func NewMemoryStore(seed map[string]string) *MemoryStore {
	data := make(map[string]string, len(seed))
	maps.Copy(data, seed)
	return &MemoryStore{data: data}
}

// Load returns a copy of the stored mapping
func (s *MemoryStore) Load(ctx context.Context) (map[string]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return maps.Clone(s.data), nil
}

// Save replaces the stored mapping with a copy of names
func (s *MemoryStore) Save(ctx context.Context, names map[string]string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = maps.Clone(names)
	if s.data == nil {
		s.data = make(map[string]string)
	}
	s.saves++
	return nil
}

// Size returns the current number of entries (for debugging/monitoring)
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Saves returns how many times Save was called
func (s *MemoryStore) Saves() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.saves
}

// Clear removes all entries
func (s *MemoryStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]string)
}

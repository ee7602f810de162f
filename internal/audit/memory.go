package audit

import (
	"context"
	"sync"
	"time"
)

const defaultMemoryCapacity = 1000

// MemoryStore keeps the most recent entries in process. It backs the audit page
// when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []Entry
	nextID   int64
	capacity int
	now      func() time.Time
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity < 1 {
		capacity = defaultMemoryCapacity
	}
	return &MemoryStore{capacity: capacity, now: time.Now}
}

func (s *MemoryStore) Record(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.capacity; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit, offset int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit < 1 || offset < 0 || offset >= len(s.entries) {
		return []Entry{}, nil
	}
	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.entries)), nil
}

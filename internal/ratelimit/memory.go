package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps counters in a process-local map. Suitable for
// single-instance deployments; counters are per-instance when scaled out.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	entry, ok := s.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &memoryEntry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = entry
		return true, 1, entry.resetAt, nil
	}

	if entry.count >= limit {
		return false, entry.count, entry.resetAt, nil
	}

	entry.count++
	return true, entry.count, entry.resetAt, nil
}

// Sweep drops counters whose window has passed. Counting stays correct without
// it; the sweep only bounds memory.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

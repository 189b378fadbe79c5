package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a process-local key-value store with lazy expiry. It backs
// the Redis fallback path and doubles as a standalone store for tests and
// single-process deployments.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = func() time.Time {
			return time.Now().UTC()
		}
	}
	return &MemoryStore{
		now:     now,
		entries: map[string]memoryEntry{},
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	if s == nil || strings.TrimSpace(key) == "" {
		return
	}
	entry := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	if s == nil || strings.TrimSpace(key) == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}
	return append([]byte(nil), entry.value...), true
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	if s == nil || strings.TrimSpace(key) == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *MemoryStore) size() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

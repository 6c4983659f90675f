package cache

import (
	"context"
	"sync"
	"time"
)

const DefaultMaxEntries = 500

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a bounded in-process cache. When it grows past its limit it is
// reset rather than evicting entry by entry.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Memory{entries: map[string]memoryEntry{}, maxEntries: maxEntries, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	if len(m.entries) > m.maxEntries {
		m.entries = map[string]memoryEntry{}
	}
	return nil
}

func (m *Memory) InvalidateMerchant(_ context.Context, merchantID int64, prefixes ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		if belongsTo(key, merchantID, prefixes) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

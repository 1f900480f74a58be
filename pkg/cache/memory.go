package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// sweepInterval bounds how often Set scans for expired entries.
const sweepInterval = time.Minute

// MemoryCache is an in-process Cache used when Redis is disabled. Values are
// stored JSON encoded so callers observe the same copy semantics as Redis.
// Expired entries are dropped on read and by a sweep piggybacked on Set.
type MemoryCache struct {
	mu        sync.RWMutex
	items     map[string]memoryItem
	now       func() time.Time
	lastSweep time.Time
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items:     make(map[string]memoryItem),
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	now := m.now()
	item := memoryItem{data: data}
	if expiration > 0 {
		item.expiresAt = now.Add(expiration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryCache) sweepLocked(now time.Time) {
	for key, item := range m.items {
		if item.expired(now) {
			delete(m.items, key)
		}
	}
	m.lastSweep = now
}

// Len reports the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return ErrCacheMiss
	}
	if item.expired(m.now()) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return ErrCacheMiss
	}

	return json.Unmarshal(item.data, dest)
}

func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

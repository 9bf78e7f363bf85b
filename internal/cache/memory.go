package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process implementation of the cache and dedup contracts.
// It backs tests and single-process development setups; production always
// uses the Redis implementations so multiple processes share state.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// MemoryDedup is the in-process counterpart of DedupMarker.
type MemoryDedup struct {
	inner *Memory
	ttl   time.Duration
}

func NewMemoryDedup(ttl time.Duration) *MemoryDedup {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &MemoryDedup{inner: NewMemory(), ttl: ttl}
}

func (d *MemoryDedup) IsQueued(ctx context.Context, key string) (bool, error) {
	_, ok, err := d.inner.Get(ctx, key)
	return ok, err
}

func (d *MemoryDedup) MarkQueued(ctx context.Context, key string) error {
	return d.inner.Set(ctx, key, "1", d.ttl)
}

func (d *MemoryDedup) MarkProcessed(ctx context.Context, key string) error {
	return d.inner.Delete(ctx, key)
}

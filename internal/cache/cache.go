// Package cache stores rendered schedule responses keyed by a hash of the
// configuration that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache is a string key/value store with a fixed entry lifetime.
type Cache interface {
	// Get returns the cached value and whether it was present. A miss is not
	// an error.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Key derives a cache key from a normalized configuration document.
func Key(prefix string, document []byte) string {
	sum := sha256.Sum256(document)
	return prefix + hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process Cache used when no Redis address is configured.
type MemoryCache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]memoryEntry
	nextSweep time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// NewMemoryCache returns an empty MemoryCache. A non-positive ttl keeps
// entries forever.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && !m.now().Before(entry.expires) {
		delete(m.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set implements Cache. At most once per TTL it also drops every expired
// entry, so keys that are never read again do not accumulate.
func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expires = now.Add(m.ttl)
		if !now.Before(m.nextSweep) {
			m.sweep(now)
			m.nextSweep = now.Add(m.ttl)
		}
	}
	m.entries[key] = entry
	return nil
}

func (m *MemoryCache) sweep(now time.Time) {
	for key, entry := range m.entries {
		if !entry.expires.IsZero() && !now.Before(entry.expires) {
			delete(m.entries, key)
		}
	}
}

// Len returns the number of stored entries, including expired entries not
// yet swept.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

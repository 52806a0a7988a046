package flint

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Cache is the interface for caching query results. Implement it with a
// preferred caching backend, or use NewMemoryCache for an in-process one.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// memoryCache is an in-process Cache with lazy TTL expiry.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// NewMemoryCache returns an in-process Cache suitable for single-process
// deployments and tests.
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, nil
	}
	return e.data, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{data: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// cacheKey derives the cache key of a compiled statement. The table
// segment keeps every key for one table under a common prefix, so any
// mutation of the table can invalidate them all at once.
func cacheKey(db, table, stmt string, args []any) string {
	h := fnv.New64a()
	h.Write([]byte(stmt))
	for _, arg := range args {
		fmt.Fprintf(h, "|%v", arg)
	}
	return fmt.Sprintf("%s:%s:%x", db, table, h.Sum64())
}

// tablePrefix is the invalidation prefix of one table's cached results.
func tablePrefix(db, table string) string {
	return db + ":" + table + ":"
}

// cached returns the decoded cached result set for the key, if caching is
// enabled and the key is present. Cache failures are treated as misses:
// a broken cache must not break reads.
func (c *Client) cached(ctx context.Context, key string) ([]Record, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, key)
	if err != nil || data == nil {
		return nil, false
	}
	var records []Record
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	return records, true
}

// store caches an encoded result set under the key.
func (c *Client) store(ctx context.Context, key string, records []Record) {
	if c.cache == nil {
		return
	}
	data, err := msgpack.Marshal(records)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, data, c.cacheTTL)
}

// invalidate drops every cached result for the table.
func (c *Client) invalidate(ctx context.Context, db, table string) {
	if c.cache == nil {
		return
	}
	_ = c.cache.DeletePrefix(ctx, tablePrefix(db, table))
}

package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultLRUSize is the entry capacity used when NewLRUCache gets zero.
const DefaultLRUSize = 256

// LRUCache keeps the most recently used entries in memory. It suits a
// long-running server that checks the same designs repeatedly.
type LRUCache struct {
	entries *lru.Cache[string, fileEntry]
}

// NewLRUCache creates an in-memory cache holding at most size entries.
func NewLRUCache(size int) (Cache, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	entries, err := lru.New[string, fileEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: entries}, nil
}

// Get retrieves a value, dropping it if it has expired.
func (c *LRUCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores a copy of data.
func (c *LRUCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Data: append([]byte(nil), data...)}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	c.entries.Add(key, entry)
	return nil
}

// Delete removes a value.
func (c *LRUCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *LRUCache) Len() int { return c.entries.Len() }

// Close drops every entry.
func (c *LRUCache) Close() error {
	c.entries.Purge()
	return nil
}

var _ Cache = (*LRUCache)(nil)

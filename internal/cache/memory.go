// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gemaraproj/reqcite-mcp/internal/annotation"
)

// MemoryCache keeps unit results in process memory with expiry.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a copy of the cached set, so callers may modify it freely.
func (c *MemoryCache) Get(key string) (*annotation.Set, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*annotation.Set).Clone(), true
	}
	return nil, false
}

// Set stores a copy of value with the default TTL.
func (c *MemoryCache) Set(key string, value *annotation.Set) {
	c.cache.SetDefault(key, value.Clone())
}

func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

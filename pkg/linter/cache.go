package linter

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ResultCache memoizes per-file findings keyed by path, content hash and
// configuration fingerprint. It lets watch mode skip unchanged files.
type ResultCache struct {
	cache  *lru.LRU[string, []Finding]
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits      int64
	Misses    int64
	ItemCount int
	HitRate   float64
}

// NewResultCache creates a cache holding at most size entries for ttl.
// A zero ttl keeps entries until they are evicted.
func NewResultCache(size int, ttl time.Duration) *ResultCache {
	if size < 1 {
		size = 1
	}
	return &ResultCache{
		cache: lru.NewLRU[string, []Finding](size, nil, ttl),
	}
}

// CacheKey builds the cache key of one file under one configuration
func CacheKey(path string, content []byte, fingerprint string) string {
	sum := sha256.Sum256(content)
	return path + "\x00" + hex.EncodeToString(sum[:]) + "\x00" + fingerprint
}

// Get returns a copy of the cached findings for key
func (c *ResultCache) Get(key string) ([]Finding, bool) {
	findings, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return append([]Finding(nil), findings...), true
}

// Add stores the findings for key
func (c *ResultCache) Add(key string, findings []Finding) {
	c.cache.Add(key, append([]Finding(nil), findings...))
}

// Purge removes every entry
func (c *ResultCache) Purge() {
	c.cache.Purge()
}

// Stats returns cache statistics
func (c *ResultCache) Stats() CacheStats {
	stats := CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		ItemCount: c.cache.Len(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

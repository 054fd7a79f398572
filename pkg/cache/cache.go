// Package cache provides the fingerprint-keyed TTL caches that sit in
// front of the LLM and the query executor.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Fingerprint normalizes text (case-folded, whitespace collapsed) and
// returns a stable hex digest. Two questions that differ only in
// casing or spacing share a fingerprint.
func Fingerprint(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type entry[V any] struct {
	value      V
	insertedAt time.Time
	expiresAt  time.Time
}

// Cache is a capacity-bounded TTL cache. Expired entries are treated
// as absent on lookup but only removed when a later Put sweeps them;
// when the cache is full after the sweep, the oldest-inserted entry is
// evicted regardless of how recently it was read.
type Cache[V any] struct {
	mu       sync.Mutex
	entries  map[string]entry[V]
	order    []string // insertion order, oldest first
	capacity int
	ttl      time.Duration
	hits     int64
	misses   int64
	now      func() time.Time
}

// New creates a cache with the given capacity and entry TTL.
func New[V any](capacity int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries:  make(map[string]entry[V]),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the live value for key. Expired entries report a miss
// without being removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Put stores value under key. A sweep removes expired entries first;
// if the cache is still full the oldest insertion is evicted.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if _, exists := c.entries[key]; exists {
		delete(c.entries, key)
		c.removeFromOrder(key)
	}

	c.sweepExpired(now)

	if len(c.entries) >= c.capacity && c.capacity > 0 {
		c.evictOldest()
	}

	c.entries[key] = entry[V]{value: value, insertedAt: now, expiresAt: now.Add(c.ttl)}
	c.order = append(c.order, key)
}

// Invalidate removes a single entry.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		delete(c.entries, key)
		c.removeFromOrder(key)
	}
}

// Clear drops everything, keeping hit/miss counters.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.order = c.order[:0]
}

// Len counts entries physically present, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports lifetime hit and miss counts.
func (c *Cache[V]) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Cache[V]) sweepExpired(now time.Time) {
	kept := c.order[:0]
	for _, k := range c.order {
		if e, ok := c.entries[k]; ok && now.After(e.expiresAt) {
			delete(c.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	c.order = kept
}

func (c *Cache[V]) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *Cache[V]) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

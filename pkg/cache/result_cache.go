package cache

import (
	"fmt"
	"time"
)

// ResultCache stores executed query rows keyed by the fingerprint of
// the SQL text, so repeated questions skip the database entirely.
type ResultCache struct {
	inner *Cache[[]map[string]any]
}

// NewResultCache builds a result cache with the given bounds.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	return &ResultCache{inner: New[[]map[string]any](capacity, ttl)}
}

// Get looks up cached rows for a SQL query.
func (rc *ResultCache) Get(sql string) ([]map[string]any, bool) {
	return rc.inner.Get(Fingerprint(sql))
}

// Put caches the rows produced by a SQL query.
func (rc *ResultCache) Put(sql string, rows []map[string]any) {
	rc.inner.Put(Fingerprint(sql), rows)
}

// Clear empties the cache, typically after a catalog refresh.
func (rc *ResultCache) Clear() { rc.inner.Clear() }

// Len reports the number of stored entries.
func (rc *ResultCache) Len() int { return rc.inner.Len() }

// Stats reports lifetime hits and misses.
func (rc *ResultCache) Stats() (hits, misses int64) { return rc.inner.Stats() }

// PromptCache stores compressed schema-context prompts. The key is a
// coarse fingerprint of the question plus the candidate table count,
// so an unchanged schema keeps hitting for rephrased-identical
// questions without hashing full schema content.
type PromptCache struct {
	inner *Cache[string]
}

// NewPromptCache builds a prompt cache with the given bounds.
func NewPromptCache(capacity int, ttl time.Duration) *PromptCache {
	return &PromptCache{inner: New[string](capacity, ttl)}
}

func promptKey(question string, schemaSize int) string {
	return Fingerprint(fmt.Sprintf("%s_%d", question, schemaSize))
}

// Get looks up a cached prompt for a question against a schema of the
// given table count.
func (pc *PromptCache) Get(question string, schemaSize int) (string, bool) {
	return pc.inner.Get(promptKey(question, schemaSize))
}

// Put caches the compressed prompt for a question.
func (pc *PromptCache) Put(question string, schemaSize int, prompt string) {
	pc.inner.Put(promptKey(question, schemaSize), prompt)
}

// Clear empties the cache.
func (pc *PromptCache) Clear() { pc.inner.Clear() }

// Len reports the number of stored entries.
func (pc *PromptCache) Len() int { return pc.inner.Len() }

// Stats reports lifetime hits and misses.
func (pc *PromptCache) Stats() (hits, misses int64) { return pc.inner.Stats() }

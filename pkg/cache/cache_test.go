package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_NormalizesCaseAndWhitespace(t *testing.T) {
	a := Fingerprint("SELECT  *\tFROM orders")
	b := Fingerprint("select * from ORDERS")
	assert.Equal(t, a, b)

	c := Fingerprint("select * from customers")
	assert.NotEqual(t, a, c)
}

func TestCache_GetPut(t *testing.T) {
	c := New[string](10, time.Hour)

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Put("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestCache_ExpiredEntryIsMissButStaysUntilSweep(t *testing.T) {
	now := time.Now()
	c := New[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Put("k", "v")

	// Past the TTL the entry reads as absent but is not deleted yet.
	now = now.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	// The next insert sweeps it out.
	c.Put("other", "x")
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("other")
	assert.True(t, ok)
}

func TestCache_EvictsOldestInsertionAtCapacity(t *testing.T) {
	c := New[int](3, time.Hour)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Reading "a" does not protect it: eviction is by insertion age.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("d", 4)
	_, ok = c.Get("a")
	assert.False(t, ok, "oldest insertion should be evicted")
	for _, k := range []string{"b", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
}

func TestCache_PutSameKeyRefreshesInsertionOrder(t *testing.T) {
	c := New[int](2, time.Hour)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // re-insert: "a" is now newest

	c.Put("c", 3) // evicts "b"
	_, ok := c.Get("b")
	assert.False(t, ok)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)
}

func TestCache_Stats(t *testing.T) {
	c := New[int](10, time.Hour)
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCache_Invalidate(t *testing.T) {
	c := New[int](10, time.Hour)
	c.Put("a", 1)
	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_KeyedByFingerprint(t *testing.T) {
	rc := NewResultCache(10, time.Hour)
	rows := []map[string]any{{"total": 100}}

	rc.Put("SELECT SUM(total) FROM orders", rows)

	got, ok := rc.Get("select   sum(total) from ORDERS")
	require.True(t, ok)
	assert.Equal(t, rows, got)
}

func TestResultCache_ClearAfterRefresh(t *testing.T) {
	rc := NewResultCache(10, time.Hour)
	rc.Put("select 1", []map[string]any{{"n": 1}})
	rc.Clear()
	assert.Equal(t, 0, rc.Len())
	_, ok := rc.Get("select 1")
	assert.False(t, ok)
}

func TestPromptCache_RoundTrip(t *testing.T) {
	pc := NewPromptCache(10, time.Hour)
	pc.Put("total sales by region", 4, "Tables: orders, regions")

	got, ok := pc.Get("Total Sales By Region", 4)
	require.True(t, ok)
	assert.Equal(t, "Tables: orders, regions", got)

	// A schema of a different size is a different key.
	_, ok = pc.Get("total sales by region", 5)
	assert.False(t, ok)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := New[int](100, time.Hour)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%50)
				c.Put(key, n)
				c.Get(key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.LessOrEqual(t, c.Len(), 100)
}

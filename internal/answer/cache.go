// Package answer memoizes final query answers so repeat questions skip the
// search and summarization work entirely.
package answer

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

const (
	// DefaultCapacity bounds the cache; the oldest-inserted entry is
	// evicted when insertion would exceed it.
	DefaultCapacity = 100
	// DefaultTTL is how long an answer stays servable.
	DefaultTTL = time.Hour
)

var fold = cases.Fold()

type entry struct {
	answer  string
	created time.Time
}

// Cache is a bounded, lazily-expiring answer store keyed by normalized
// query. Eviction is approximate FIFO by insertion order.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	order    []string
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates an answer cache. Non-positive capacity or ttl fall back
// to the defaults.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:  make(map[string]entry),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// normalizeKey folds case and trims whitespace so queries differing only in
// either hit the same entry.
func normalizeKey(query string) string {
	return fold.String(strings.TrimSpace(query))
}

// Get returns the cached answer for the query, if present and younger than
// the TTL. Expired entries are removed on lookup; there is no sweeper.
func (c *Cache) Get(query string) (string, bool) {
	key := normalizeKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.created) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.answer, true
}

// Put stores the answer, evicting the oldest-inserted entry when the cache
// is full.
func (c *Cache) Put(query, answer string) {
	key := normalizeKey(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry{answer: answer, created: c.now()}
		return
	}

	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		// Order may hold keys already removed by lazy expiry; only a
		// present key counts as an eviction.
		if _, ok := c.entries[oldest]; ok {
			delete(c.entries, oldest)
		}
	}

	c.entries[key] = entry{answer: answer, created: c.now()}
	c.order = append(c.order, key)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

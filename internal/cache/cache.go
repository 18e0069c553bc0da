// Package cache holds the in-memory snapshot of pricing records and recall
// notices. A refresh builds a complete new snapshot and swaps it in as a
// single update, so readers always see a consistent pairing of both
// datasets and their timestamp.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/garagehq/servicebot/internal/pricing"
	"github.com/garagehq/servicebot/internal/recall"
)

// DefaultStaleAfter is how long a snapshot is served before a refresh is
// required.
const DefaultStaleAfter = time.Hour

// Snapshot is one complete, immutable refresh result.
type Snapshot struct {
	Pricing     []pricing.Record
	Recalls     []recall.Descriptor
	RefreshedAt time.Time
}

// Cache is the owned, injectable snapshot store. A single writer (the
// refresher) installs snapshots; any number of readers take the current
// one. The refreshing flag suppresses re-entrant refreshes — it is a guard,
// not a queue.
type Cache struct {
	mu         sync.RWMutex
	snap       *Snapshot
	refreshing atomic.Bool
	staleAfter time.Duration
	now        func() time.Time
}

// New creates an empty cache. A non-positive staleAfter falls back to
// DefaultStaleAfter.
func New(staleAfter time.Duration) *Cache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Cache{
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Snapshot returns the current snapshot, or nil before the first successful
// refresh. The snapshot is immutable; callers must not modify it.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Replace installs a new snapshot stamped with the current instant. Both
// datasets and the timestamp change in one step.
func (c *Cache) Replace(records []pricing.Record, notices []recall.Descriptor) {
	snap := &Snapshot{
		Pricing:     records,
		Recalls:     notices,
		RefreshedAt: c.now(),
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	zap.L().Info("cache: snapshot replaced",
		zap.Int("pricing_records", len(records)),
		zap.Int("recall_notices", len(notices)),
	)
}

// NeedsRefresh reports whether the cache has never loaded or the current
// snapshot has outlived its staleness window.
func (c *Cache) NeedsRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return true
	}
	return c.now().Sub(c.snap.RefreshedAt) > c.staleAfter
}

// BeginRefresh attempts to claim the refresh guard. It returns false when a
// refresh is already in progress.
func (c *Cache) BeginRefresh() bool {
	return c.refreshing.CompareAndSwap(false, true)
}

// EndRefresh releases the refresh guard. Callers must defer this
// immediately after a successful BeginRefresh.
func (c *Cache) EndRefresh() {
	c.refreshing.Store(false)
}

// Refreshing reports whether a refresh is currently in progress.
func (c *Cache) Refreshing() bool {
	return c.refreshing.Load()
}

// Stats summarizes the cache for the status endpoint.
type Stats struct {
	Loaded         bool      `json:"loaded"`
	PricingRecords int       `json:"pricing_records"`
	RecallNotices  int       `json:"recall_notices"`
	RefreshedAt    time.Time `json:"refreshed_at,omitzero"`
	Stale          bool      `json:"stale"`
	Refreshing     bool      `json:"refreshing"`
}

// Stats returns a point-in-time summary of the cache.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()

	stats := Stats{
		Refreshing: c.Refreshing(),
		Stale:      c.NeedsRefresh(),
	}
	if snap != nil {
		stats.Loaded = true
		stats.PricingRecords = len(snap.Pricing)
		stats.RecallNotices = len(snap.Recalls)
		stats.RefreshedAt = snap.RefreshedAt
	}
	return stats
}

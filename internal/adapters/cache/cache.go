// Package cache keeps compiled schema validators warm between requests.
//
// The cache is bounded: when an insertion would push occupancy over the
// configured maximum, the bottom quartile ranked by last use is evicted
// first, so the cache stays self-limiting even under validator-shape churn.
// Staleness is checked lazily on access; there is no background sweep.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/schema"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/metrics"
)

// Default cache configuration constants.
const (
	defaultMaxSize = 50
	defaultTTL     = 5 * time.Minute
)

// Compiler produces a compiled rule set for a record kind.
type Compiler func(kind model.RecordKind) (*schema.RuleSet, error)

// Stats is a read-only snapshot of cache counters, consumed by the
// performance optimizer's hit-rate calculation.
type Stats struct {
	Hits            uint64
	Misses          uint64
	Insertions      uint64
	Evictions       uint64
	StaleRecompiles uint64
	Size            int
}

// entry is one cached compiled validator.
type entry struct {
	compiled   *schema.RuleSet
	compiledAt time.Time
	lastUsedAt time.Time
	hits       uint64
}

// Cache is a bounded keyed store of compiled validators. Safe for
// concurrent use. Timestamp races under contention only degrade eviction
// quality; a stale compiled validator is still a valid one.
type Cache struct {
	mu      sync.Mutex
	entries map[model.RecordKind]*entry

	maxSize int
	ttl     time.Duration
	compile Compiler
	now     func() time.Time

	stats Stats
}

// New creates a cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[model.RecordKind]*entry),
		maxSize: defaultMaxSize,
		ttl:     defaultTTL,
		compile: schema.Compile,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// GetOrCompile returns the compiled validator for kind. The second return
// is true when the call was served from cache; a stale entry is recompiled
// in place and counts as an insertion, not a hit.
func (c *Cache) GetOrCompile(ctx context.Context, kind model.RecordKind) (*schema.RuleSet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if e, ok := c.entries[kind]; ok {
		if now.Sub(e.lastUsedAt) <= c.ttl {
			e.lastUsedAt = now
			e.hits++
			c.stats.Hits++
			metrics.RecordCacheHit()
			return e.compiled, true, nil
		}

		// Stale: present but unused for longer than the TTL.
		compiled, err := c.compile(kind)
		if err != nil {
			return nil, false, fmt.Errorf("recompile validator for %q: %w: %w", kind, ErrCompileFailed, err)
		}
		e.compiled = compiled
		e.compiledAt = now
		e.lastUsedAt = now
		c.stats.StaleRecompiles++
		c.stats.Insertions++
		metrics.RecordCacheStaleRecompile()
		return compiled, false, nil
	}

	compiled, err := c.compile(kind)
	if err != nil {
		c.stats.Misses++
		metrics.RecordCacheMiss()
		return nil, false, fmt.Errorf("compile validator for %q: %w: %w", kind, ErrCompileFailed, err)
	}

	// Make room before inserting so occupancy never exceeds maxSize.
	if len(c.entries) >= c.maxSize {
		c.evictQuartile()
	}

	c.entries[kind] = &entry{compiled: compiled, compiledAt: now, lastUsedAt: now}
	c.stats.Misses++
	c.stats.Insertions++
	metrics.RecordCacheMiss()
	metrics.RecordCacheInsertion()
	metrics.UpdateCacheSize(len(c.entries))
	return compiled, false, nil
}

// evictQuartile removes the oldest-used quarter of the cache, at least one
// entry. Must be called with c.mu held.
func (c *Cache) evictQuartile() {
	type aged struct {
		kind model.RecordKind
		used time.Time
	}
	candidates := make([]aged, 0, len(c.entries))
	for kind, e := range c.entries {
		candidates = append(candidates, aged{kind: kind, used: e.lastUsedAt})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].used.Before(candidates[j].used)
	})

	n := len(candidates) / 4
	if n < 1 {
		n = 1
	}
	for _, victim := range candidates[:n] {
		delete(c.entries, victim.kind)
		c.stats.Evictions++
		metrics.RecordCacheEviction()
	}
	metrics.UpdateCacheSize(len(c.entries))
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Size = len(c.entries)
	return s
}

// Len returns the current number of cached validators.
func (c *Cache) Len(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

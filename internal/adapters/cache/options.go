// Package cache keeps compiled schema validators warm between requests.
package cache

import "time"

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithMaxSize sets the maximum number of cached validators.
func WithMaxSize(size int) Option {
	return func(c *Cache) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithTTL sets how long an entry may sit unused before it is considered
// stale and recompiled on next access.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCompiler replaces the schema compiler. Used by tests to cache
// arbitrary keys without a real schema behind them.
func WithCompiler(compile Compiler) Option {
	return func(c *Cache) {
		if compile != nil {
			c.compile = compile
		}
	}
}

// WithClock replaces the time source for staleness and eviction ranking.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

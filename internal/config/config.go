// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - Provide New() to build a Config with defaults, Load(ctx) to layer
//     file and environment overrides on top.
//   - External errors must be wrapped via this package's error kinds.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MaxCacheSize bounds the compiled-validator cache.
	MaxCacheSize int `koanf:"max_cache_size"`

	// CacheTTLMS is how long a cached validator may sit unused, in ms.
	CacheTTLMS int `koanf:"cache_ttl_ms"`

	// MaxRecoveryAttempts caps strategy attempts per recovery session.
	MaxRecoveryAttempts int `koanf:"max_recovery_attempts"`

	// DefaultConcurrency is the batch chunk size when callers give none.
	DefaultConcurrency int `koanf:"default_concurrency"`

	// SampleBufferSize bounds the optimizer's rolling sample history.
	SampleBufferSize int `koanf:"sample_buffer_size"`

	// SlowValidationMS triggers the parallelize suggestion.
	SlowValidationMS float64 `koanf:"slow_validation_ms"`

	// OverheadPct triggers the cache-tuning suggestion.
	OverheadPct float64 `koanf:"overhead_pct"`

	// MinHitRate (0..1) triggers the TTL/pre-warm suggestion.
	MinHitRate float64 `koanf:"min_hit_rate"`

	// BatchIncreaseThreshold and BatchDecreaseThreshold bound the
	// optimal-batch-size band for recommendations.
	BatchIncreaseThreshold int `koanf:"batch_increase_threshold"`
	BatchDecreaseThreshold int `koanf:"batch_decrease_threshold"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		MaxCacheSize:           50,
		CacheTTLMS:             int((5 * time.Minute).Milliseconds()),
		MaxRecoveryAttempts:    3,
		DefaultConcurrency:     5,
		SampleBufferSize:       1000,
		SlowValidationMS:       100,
		OverheadPct:            15,
		MinHitRate:             0.70,
		BatchIncreaseThreshold: 20,
		BatchDecreaseThreshold: 5,
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMS) * time.Millisecond
}

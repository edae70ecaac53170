package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if SJI_CONFIG is set
//  3. env (prefix SJI_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("SJI_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: SJI_ADDR, SJI_MAX_CACHE_SIZE, ...
	// Map env keys like SJI_MAX_CACHE_SIZE -> max_cache_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("SJI_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "sji_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects values the components cannot run with.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	positives := map[string]int{
		"max_cache_size":        c.MaxCacheSize,
		"cache_ttl_ms":          c.CacheTTLMS,
		"max_recovery_attempts": c.MaxRecoveryAttempts,
		"default_concurrency":   c.DefaultConcurrency,
		"sample_buffer_size":    c.SampleBufferSize,
	}
	for name, v := range positives {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, name, v)
		}
	}
	if c.MinHitRate < 0 || c.MinHitRate > 1 {
		return fmt.Errorf("%w: min_hit_rate must be within [0,1], got %g", ErrInvalidConfig, c.MinHitRate)
	}
	return nil
}

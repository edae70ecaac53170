// Package service provides the enhanced validation facade that external
// collaborators call.
package service

import (
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/optimizer"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxCacheSize bounds the compiled-validator cache.
func WithMaxCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxCacheSize = size
		}
	}
}

// WithCacheTTL sets how long a cached validator may sit unused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMaxRecoveryAttempts caps the strategy attempts per recovery session.
func WithMaxRecoveryAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecoveryAttempts = n
		}
	}
}

// WithDefaultConcurrency sets the batch chunk size used when callers do
// not supply one.
func WithDefaultConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSampleCapacity bounds the optimizer's rolling sample buffer.
func WithSampleCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sampleCapacity = n
		}
	}
}

// WithThresholds overrides the optimizer's recommendation trigger points.
func WithThresholds(t optimizer.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

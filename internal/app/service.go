// Package service provides the enhanced validation facade that external
// collaborators call. It owns the validator cache, the performance
// optimizer and the recovery orchestrator as explicit instances, so there
// is no hidden module-level state shared across requests or tests.
package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/adapters/cache"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/optimizer"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/recovery"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/metrics"
)

// Default facade configuration constants.
const (
	defaultMaxCacheSize        = 50
	defaultCacheTTL            = 5 * time.Minute
	defaultMaxRecoveryAttempts = 3
	defaultConcurrency         = 5
	defaultSampleCapacity      = 1000

	// validationVersion is stamped into every result's metadata.
	validationVersion = "1.0"
)

// Service implements the validation facade. All validation flows through
// it: single payloads via ValidateOne, collections via ValidateBatch.
type Service struct {
	mu sync.RWMutex

	// Core components
	cache     *cache.Cache
	optimizer *optimizer.Optimizer
	recovery  *recovery.Orchestrator

	// Configuration
	maxCacheSize        int
	cacheTTL            time.Duration
	maxRecoveryAttempts int
	concurrency         int
	sampleCapacity      int
	thresholds          optimizer.Thresholds

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxCacheSize:        defaultMaxCacheSize,
		cacheTTL:            defaultCacheTTL,
		maxRecoveryAttempts: defaultMaxRecoveryAttempts,
		concurrency:         defaultConcurrency,
		sampleCapacity:      defaultSampleCapacity,
		thresholds:          optimizer.DefaultThresholds(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the validation components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("validation")
	}

	s.cache = cache.New(
		cache.WithMaxSize(s.maxCacheSize),
		cache.WithTTL(s.cacheTTL),
	)
	s.optimizer = optimizer.New(s.cache,
		optimizer.WithSampleCapacity(s.sampleCapacity),
		optimizer.WithThresholds(s.thresholds),
	)
	s.recovery = recovery.New(
		recovery.WithMaxAttempts(s.maxRecoveryAttempts),
		recovery.WithLogger(s.logger.Named("recovery")),
	)

	s.started = true
	s.logger.Info(ctx, "validation service started",
		logger.Int("maxCacheSize", s.maxCacheSize),
		logger.Int("maxRecoveryAttempts", s.maxRecoveryAttempts),
		logger.Int("concurrency", s.concurrency),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "validation service stopped")
}

// ValidateOne validates a raw payload, escalating to recovery on parse or
// schema failure. Only recovery exhaustion produces a failed result; all
// other defects are repaired or substituted internally.
func (s *Service) ValidateOne(ctx context.Context, raw string, kind model.RecordKind, reqCtx model.RequestContext) Result {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return Result{Success: false, Errors: []string{ErrNotStarted.Error()}}
	}

	start := time.Now()
	requestID := uuid.NewString()

	var value any
	parseErr := json.Unmarshal([]byte(raw), &value)

	reason := recovery.FailureMalformedJSON
	var violations []string

	if parseErr == nil {
		outcome, sample := s.optimizer.TrackedValidate(ctx, value, kind, reqCtx.BatchSizeHint)
		if outcome.Accepted {
			elapsedMS := msSince(start)
			metrics.RecordValidation(kind.String(), true)
			s.logValidation(ctx, "single_validation", kind, true, "", elapsedMS, 0, reqCtx.SessionID)
			return Result{
				Success: true,
				Data:    outcome.Value,
				Metadata: Metadata{
					ProcessingMS:      elapsedMS,
					RetryCount:        0,
					UsedCache:         sample.FromCache,
					RecoveryUsed:      false,
					ValidationVersion: validationVersion,
				},
			}
		}
		reason = recovery.FailureSchemaViolation
		violations = outcome.Violations
		metrics.RecordSchemaViolation()
	} else {
		metrics.RecordParseFailure()
	}

	outcome, sess, err := s.recovery.Recover(ctx, recovery.Failure{
		RequestID:  requestID,
		Reason:     reason,
		Raw:        raw,
		RecordKind: kind,
		Violations: violations,
		Context:    reqCtx,
	})

	elapsedMS := msSince(start)
	if err != nil {
		metrics.RecordValidation(kind.String(), false)
		s.logValidation(ctx, "single_validation", kind, false, err.Error(), elapsedMS, sess.AttemptCount, reqCtx.SessionID)
		return Result{
			Success: false,
			Errors:  append(outcome.Violations, err.Error()),
			Metadata: Metadata{
				ProcessingMS:      elapsedMS,
				RetryCount:        sess.AttemptCount,
				UsedCache:         false,
				RecoveryUsed:      true,
				ValidationVersion: validationVersion,
			},
		}
	}

	metrics.RecordValidation(kind.String(), true)
	s.logValidation(ctx, "single_validation", kind, true, "", elapsedMS, sess.AttemptCount, reqCtx.SessionID)
	return Result{
		Success: true,
		Data:    outcome.Value,
		Metadata: Metadata{
			ProcessingMS:      elapsedMS,
			RetryCount:        sess.AttemptCount,
			UsedCache:         false,
			RecoveryUsed:      true,
			ValidationVersion: validationVersion,
		},
	}
}

// logValidation emits the per-validation entry consumed by the metrics
// sink collaborator.
func (s *Service) logValidation(ctx context.Context, op string, kind model.RecordKind, success bool, errMsg string, elapsedMS float64, retries int, sessionID string) {
	fields := []logger.Field{
		logger.String("operationType", op),
		logger.String("validationType", kind.String()),
		logger.Any("success", success),
		logger.Float64("processingTimeMs", elapsedMS),
		logger.Int("retryCount", retries),
		logger.String("sessionId", sessionID),
	}
	if errMsg != "" {
		fields = append(fields, logger.String("errorMessage", errMsg))
		s.logger.Warn(ctx, "validation failed", fields...)
		return
	}
	s.logger.Info(ctx, "validation completed", fields...)
}

// GetStats returns service statistics for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":             s.started,
		"maxCacheSize":        s.maxCacheSize,
		"cacheTTLMs":          s.cacheTTL.Milliseconds(),
		"maxRecoveryAttempts": s.maxRecoveryAttempts,
		"defaultConcurrency":  s.concurrency,
	}
	if s.started {
		cs := s.cache.Stats()
		stats["cache"] = map[string]interface{}{
			"hits":            cs.Hits,
			"misses":          cs.Misses,
			"insertions":      cs.Insertions,
			"evictions":       cs.Evictions,
			"staleRecompiles": cs.StaleRecompiles,
			"size":            cs.Size,
		}
		stats["sampleCount"] = s.optimizer.SampleCount()
	}
	return stats
}

// Report returns the optimizer's current recommendation report.
func (s *Service) Report(ctx context.Context) optimizer.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return optimizer.Report{Summary: "no performance data available"}
	}
	return s.optimizer.Recommend(ctx)
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1e3
}

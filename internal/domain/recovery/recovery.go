// Package recovery coerces malformed or non-conformant LLM payloads into
// schema-acceptable values through an ordered sequence of strategies.
//
// Strategies are a priority-sorted list built once at construction; each
// attempt is independently timed and counted against a fixed ceiling, so a
// recovery session never waits unboundedly.
package recovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/schema"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/metrics"
)

// Default recovery configuration constants.
const (
	defaultMaxAttempts = 3
)

// Failure describes the defect a recovery session starts from.
type Failure struct {
	RequestID  string
	Reason     FailureKind
	Raw        string
	RecordKind model.RecordKind
	Violations []string
	Context    model.RequestContext
}

// ValidateFunc checks a candidate value against the schema for a kind.
type ValidateFunc func(value any, kind model.RecordKind) model.ValidationOutcome

// Strategy is one prioritized attempt at coercing a failure into an
// acceptable value. Attempt returns a candidate; the orchestrator decides
// acceptance by validating it.
type Strategy struct {
	Name      string
	Priority  int
	CanHandle func(f Failure) bool
	Attempt   func(ctx context.Context, f Failure) (any, error)
}

// Orchestrator runs recovery sessions. Safe for concurrent use; all state
// lives in the per-call Session.
type Orchestrator struct {
	strategies  []Strategy
	maxAttempts int
	validate    ValidateFunc
	logger      logger.Logger
}

// New creates an orchestrator with the built-in strategy ladder unless
// WithStrategies overrides it.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		maxAttempts: defaultMaxAttempts,
		validate:    schema.Validate,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logger.Get().Named("recovery")
	}
	if o.strategies == nil {
		o.strategies = o.builtinStrategies()
	}
	sort.SliceStable(o.strategies, func(i, j int) bool {
		return o.strategies[i].Priority < o.strategies[j].Priority
	})

	return o
}

// Recover escalates through the strategies until one produces a value the
// schema accepts or the attempt ceiling is hit. On success the accepted
// outcome is returned; on exhaustion the outcome carries the accumulated
// violation chain and err wraps ErrRecoveryExhausted.
func (o *Orchestrator) Recover(ctx context.Context, f Failure) (model.ValidationOutcome, *Session, error) {
	sess := newSession(f.RequestID, f.Reason)
	violations := append([]string(nil), f.Violations...)

	for _, strat := range o.strategies {
		if sess.AttemptCount >= o.maxAttempts {
			break
		}
		if strat.CanHandle != nil && !strat.CanHandle(f) {
			continue
		}

		sess.AttemptCount++
		attemptStart := time.Now()
		candidate, err := o.attempt(ctx, strat, f)
		attemptMS := float64(time.Since(attemptStart).Microseconds()) / 1e3
		metrics.RecordRecoveryAttempt(strat.Name)
		metrics.RecordRecoveryLatency(attemptMS)

		if err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", strat.Name, err))
			o.logger.Debug(ctx, "recovery strategy failed",
				logger.String("strategy", strat.Name),
				logger.Int("attempt", sess.AttemptCount),
				logger.Error(err),
			)
			continue
		}

		outcome := o.validate(candidate, f.RecordKind)
		if outcome.Accepted {
			sess.StrategyName = strat.Name
			sess.finalize(true)
			metrics.RecordRecoverySession(strat.Name, true)
			o.logger.Info(ctx, "recovery succeeded",
				logger.String("strategy", strat.Name),
				logger.Int("attempts", sess.AttemptCount),
				logger.String("sessionID", sess.ID),
			)
			return outcome, sess, nil
		}
		for _, v := range outcome.Violations {
			violations = append(violations, fmt.Sprintf("%s: %s", strat.Name, v))
		}
	}

	sess.finalize(false)
	metrics.RecordRecoverySession(sess.StrategyName, false)
	metrics.RecordRecoveryExhausted()
	o.logger.Warn(ctx, "recovery exhausted",
		logger.Int("attempts", sess.AttemptCount),
		logger.String("sessionID", sess.ID),
	)
	return model.ValidationOutcome{Violations: violations},
		sess,
		fmt.Errorf("after %d attempt(s): %w", sess.AttemptCount, ErrRecoveryExhausted)
}

// attempt runs one strategy with a panic guard so a defective strategy
// cannot take down sibling work.
func (o *Orchestrator) attempt(ctx context.Context, s Strategy, f Failure) (candidate any, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidate = nil
			err = fmt.Errorf("%w: %s: %v", ErrStrategyPanic, s.Name, r)
		}
	}()
	return s.Attempt(ctx, f)
}

// Package recovery coerces malformed or non-conformant LLM payloads into
// schema-acceptable values through an ordered sequence of strategies.
package recovery

import (
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithMaxAttempts caps how many strategy attempts one session may make.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithStrategies replaces the built-in strategy ladder. Strategies are
// sorted by ascending priority at construction.
func WithStrategies(strategies ...Strategy) Option {
	return func(o *Orchestrator) {
		if len(strategies) > 0 {
			o.strategies = strategies
		}
	}
}

// WithValidateFunc replaces the schema validation used to judge candidates.
func WithValidateFunc(validate ValidateFunc) Option {
	return func(o *Orchestrator) {
		if validate != nil {
			o.validate = validate
		}
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

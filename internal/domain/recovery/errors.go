package recovery

import "errors"

// Sentinel kinds for recovery errors.
var (
	ErrRecoveryExhausted = errors.New("recovery exhausted")
	ErrStrategyPanic     = errors.New("recovery strategy panicked")
)

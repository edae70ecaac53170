package recovery

import (
	"time"

	"github.com/google/uuid"
)

// FailureKind classifies what went wrong before recovery was entered.
type FailureKind string

// Failure classifications.
const (
	FailureMalformedJSON   FailureKind = "malformed_json"
	FailureSchemaViolation FailureKind = "schema_violation"
)

// Session tracks one escalation from failure to success or exhaustion.
// It is mutated once per attempt, finalized exactly once, then immutable;
// the orchestrator hands it to the metrics sink and does not retain it.
type Session struct {
	ID              string
	SourceRequestID string
	FailureKind     FailureKind
	StrategyName    string
	AttemptCount    int
	Succeeded       bool
	TotalMS         float64

	startedAt time.Time
	finalized bool
}

func newSession(requestID string, kind FailureKind) *Session {
	return &Session{
		ID:              uuid.NewString(),
		SourceRequestID: requestID,
		FailureKind:     kind,
		startedAt:       time.Now(),
	}
}

// finalize seals the session. Subsequent calls are no-ops.
func (s *Session) finalize(succeeded bool) {
	if s.finalized {
		return
	}
	s.Succeeded = succeeded
	s.TotalMS = float64(time.Since(s.startedAt).Microseconds()) / 1e3
	s.finalized = true
}

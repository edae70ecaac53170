// Package model contains domain models passed between layers.
package model

// RecordKind selects which schema and which recovery heuristics apply to a
// payload. It is supplied by the caller per request and never inferred.
type RecordKind string

// The three fixed record shapes this core understands.
const (
	KindSingle   RecordKind = "single"
	KindBatch    RecordKind = "batch"
	KindAnalysis RecordKind = "analysis"
)

// Valid reports whether k is one of the known record kinds.
func (k RecordKind) Valid() bool {
	switch k {
	case KindSingle, KindBatch, KindAnalysis:
		return true
	default:
		return false
	}
}

func (k RecordKind) String() string {
	return string(k)
}

// ScoredItem is the atomic unit of grading output: one question, scored.
type ScoredItem struct {
	QuestionNumber int      `json:"questionNumber"`
	IsCorrect      bool     `json:"isCorrect"`
	PointsEarned   float64  `json:"pointsEarned"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning,omitempty"`
	SkillTags      []string `json:"skillTags,omitempty"`
}

// BatchRecord wraps a non-empty ordered list of scored items.
type BatchRecord struct {
	Items     []ScoredItem `json:"items"`
	BatchID   string       `json:"batchId,omitempty"`
	ElapsedMS float64      `json:"elapsedMs,omitempty"`
	ModelID   string       `json:"modelId,omitempty"`
}

// SkillBreakdown is one per-skill entry inside an AnalysisRecord.
type SkillBreakdown struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Earned   float64 `json:"earned"`
	Possible float64 `json:"possible"`
}

// AnalysisRecord is an aggregate analysis of a graded submission.
//
// The schema deliberately does not enforce earned <= possible; that is a
// business-rule check owned by the downstream scoring layer, not a
// structural property of the payload.
type AnalysisRecord struct {
	OverallScore    float64          `json:"overallScore"`
	LetterGrade     string           `json:"letterGrade"`
	Earned          float64          `json:"earned"`
	Possible        float64          `json:"possible"`
	Feedback        string           `json:"feedback,omitempty"`
	SkillBreakdowns []SkillBreakdown `json:"skillBreakdowns,omitempty"`
}

// ValidationOutcome is the result of one schema validation call. It is
// produced once and never mutated afterward.
type ValidationOutcome struct {
	// Accepted is true when the value conforms to the schema for its kind.
	Accepted bool

	// Value holds the typed record (ScoredItem, BatchRecord or
	// AnalysisRecord) when Accepted is true.
	Value any

	// Violations lists every field-level defect found, not just the first,
	// so recovery heuristics can target specific fields.
	Violations []string
}

// RequestContext carries caller-supplied tags. They feed metrics, logs and
// fallback synthesis, never validation logic.
type RequestContext struct {
	SessionID     string  `json:"sessionId,omitempty"`
	BatchSizeHint int     `json:"batchSizeHint,omitempty"`
	ModelID       string  `json:"modelId,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	QuestionCount int     `json:"questionCount,omitempty"`
	FileCount     int     `json:"fileCount,omitempty"`
}

package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
)

// Built-in strategy names, in escalation order.
const (
	StrategyDirectRetry       = "direct_retry"
	StrategySchemaCorrection  = "schema_correction"
	StrategyFallbackSynthesis = "fallback_synthesis"
)

// Safe defaults injected by schema correction. The confidence default is
// deliberately mid-scale: a patched field carries no real signal.
const (
	defaultOrdinal    = 1
	defaultPoints     = 0
	defaultConfidence = 0.5
)

// Fallback sizing when the request context gives no question count.
const (
	questionsPerFile      = 5
	defaultQuestionCount  = 10
	fallbackNoticePrefix  = "recovery fallback"
	fallbackNoticeGeneric = fallbackNoticePrefix + ": original model output could not be validated"
)

var (
	codeFenceRE     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)
)

// builtinStrategies is the default ladder: retry after stripping formatting
// noise, then kind-specific structural patches, then explicit fallback
// synthesis.
func (o *Orchestrator) builtinStrategies() []Strategy {
	always := func(Failure) bool { return true }
	return []Strategy{
		{Name: StrategyDirectRetry, Priority: 1, CanHandle: always, Attempt: attemptDirectRetry},
		{Name: StrategySchemaCorrection, Priority: 2, CanHandle: always, Attempt: o.attemptSchemaCorrection},
		{Name: StrategyFallbackSynthesis, Priority: 3, CanHandle: always, Attempt: attemptFallbackSynthesis},
	}
}

// cleanRaw strips common LLM formatting noise: code fences, stray trailing
// commas, irregular whitespace.
func cleanRaw(raw string) string {
	s := strings.TrimSpace(raw)
	if m := codeFenceRE.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	s = strings.Trim(s, "`")
	s = trailingCommaRE.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

// extractJSON pulls the first object or array region out of surrounding
// prose. Objects are preferred since all record shapes are envelopes.
func extractJSON(s string) (string, bool) {
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			return s[i : j+1], true
		}
	}
	if i := strings.Index(s, "["); i >= 0 {
		if j := strings.LastIndex(s, "]"); j > i {
			return s[i : j+1], true
		}
	}
	return "", false
}

// cleanedDocument normalizes raw text into a parseable JSON document.
func cleanedDocument(raw string) (string, bool) {
	doc := cleanRaw(raw)
	if gjson.Valid(doc) {
		return doc, true
	}
	if region, ok := extractJSON(doc); ok && gjson.Valid(region) {
		return region, true
	}
	return "", false
}

func parseAny(doc string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, fmt.Errorf("parse cleaned payload: %w", err)
	}
	return v, nil
}

// attemptDirectRetry re-parses the raw text after stripping formatting
// noise. It fixes payloads that were valid JSON wrapped in decoration.
func attemptDirectRetry(ctx context.Context, f Failure) (any, error) {
	doc, ok := cleanedDocument(f.Raw)
	if !ok {
		return nil, errors.New("payload still does not parse after cleanup")
	}
	return parseAny(doc)
}

// attemptSchemaCorrection applies kind-specific structural patches to the
// cleaned document, re-validating after each patch and returning the first
// candidate the schema accepts.
func (o *Orchestrator) attemptSchemaCorrection(ctx context.Context, f Failure) (any, error) {
	doc, ok := cleanedDocument(f.Raw)
	if !ok {
		return nil, errors.New("nothing parseable to correct")
	}

	for _, patch := range correctionPatches(f.RecordKind) {
		patched, err := patch(doc)
		if err != nil {
			continue
		}
		doc = patched

		candidate, err := parseAny(doc)
		if err != nil {
			continue
		}
		if outcome := o.validate(candidate, f.RecordKind); outcome.Accepted {
			return candidate, nil
		}
	}
	return nil, errors.New("no structural patch produced a conformant value")
}

// patchFunc transforms a JSON document, returning it unchanged when the
// patch does not apply.
type patchFunc func(doc string) (string, error)

func correctionPatches(kind model.RecordKind) []patchFunc {
	switch kind {
	case model.KindSingle:
		return []patchFunc{
			injectMissing("questionNumber", defaultOrdinal),
			injectMissing("pointsEarned", defaultPoints),
			injectMissing("confidence", defaultConfidence),
		}
	case model.KindBatch:
		return []patchFunc{wrapBareArray}
	case model.KindAnalysis:
		return []patchFunc{
			injectMissing("overallScore", 0),
			injectMissing("letterGrade", "F"),
			injectMissing("earned", 0),
			injectMissing("possible", 0),
		}
	default:
		return nil
	}
}

// injectMissing sets key to a safe default when the document lacks it.
func injectMissing(key string, value any) patchFunc {
	return func(doc string) (string, error) {
		if gjson.Get(doc, key).Exists() {
			return doc, nil
		}
		patched, err := sjson.Set(doc, key, value)
		if err != nil {
			return doc, fmt.Errorf("inject %q: %w", key, err)
		}
		return patched, nil
	}
}

// wrapBareArray puts a bare top-level array into the required items
// envelope.
func wrapBareArray(doc string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(doc), "[") {
		return `{"items":` + doc + `}`, nil
	}
	return doc, nil
}

// attemptFallbackSynthesis manufactures an explicitly-flagged placeholder.
// The reasoning/feedback text marks the value as synthetic so it is never
// mistaken for a genuine result downstream.
func attemptFallbackSynthesis(ctx context.Context, f Failure) (any, error) {
	switch f.RecordKind {
	case model.KindSingle:
		return synthesizeItem(defaultOrdinal), nil
	case model.KindBatch:
		count := inferQuestionCount(f.Context)
		items := make([]any, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, synthesizeItem(i+1))
		}
		return map[string]any{"items": items}, nil
	case model.KindAnalysis:
		return map[string]any{
			"overallScore": 0,
			"letterGrade":  "F",
			"earned":       0,
			"possible":     0,
			"feedback":     fallbackNoticeGeneric,
		}, nil
	default:
		return nil, fmt.Errorf("no fallback shape for kind %q", f.RecordKind)
	}
}

func synthesizeItem(ordinal int) map[string]any {
	return map[string]any{
		"questionNumber": ordinal,
		"isCorrect":      false,
		"pointsEarned":   0,
		"confidence":     0,
		"reasoning":      fallbackNoticeGeneric,
	}
}

// inferQuestionCount sizes a synthesized batch: explicit question count,
// else file count x 5, else 10.
func inferQuestionCount(rc model.RequestContext) int {
	if rc.QuestionCount > 0 {
		return rc.QuestionCount
	}
	if rc.FileCount > 0 {
		return rc.FileCount * questionsPerFile
	}
	return defaultQuestionCount
}

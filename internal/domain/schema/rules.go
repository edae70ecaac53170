package schema

import (
	"fmt"
	"math"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
)

// Inclusive numeric bounds used by the grading schemas.
const (
	minConfidence = 0.0
	maxConfidence = 1.0
	minScore      = 0.0
	maxScore      = 100.0
	minOrdinal    = 1.0
	minPoints     = 0.0
)

// letterGrades is the closed set of acceptable letter grades.
var letterGrades = []string{"A", "B", "C", "D", "F"}

// rulesFor returns the compiled object rules for kind.
func rulesFor(kind model.RecordKind) (objectRules, bool) {
	switch kind {
	case model.KindSingle:
		return scoredItemRules(), true
	case model.KindBatch:
		return batchRules(), true
	case model.KindAnalysis:
		return analysisRules(), true
	default:
		return objectRules{}, false
	}
}

func scoredItemRules() objectRules {
	return newObjectRules(
		field("questionNumber", required, integerAtLeast(minOrdinal)),
		field("isCorrect", required, boolean()),
		field("pointsEarned", required, numberAtLeast(minPoints)),
		field("confidence", required, numberBetween(minConfidence, maxConfidence)),
		field("reasoning", optional, str()),
		field("skillTags", optional, stringArray()),
	)
}

func batchRules() objectRules {
	return newObjectRules(
		field("items", required, objectArray(scoredItemRules())),
		field("batchId", optional, str()),
		field("elapsedMs", optional, numberAtLeast(0)),
		field("modelId", optional, str()),
	)
}

// analysisRules declares the aggregate-analysis shape. Note: earned <=
// possible is a business rule, not a structural one, and is intentionally
// not checked here.
func analysisRules() objectRules {
	return newObjectRules(
		field("overallScore", required, numberBetween(minScore, maxScore)),
		field("letterGrade", required, oneOf(letterGrades)),
		field("earned", required, numberAtLeast(0)),
		field("possible", required, numberAtLeast(0)),
		field("feedback", optional, str()),
		field("skillBreakdowns", optional, objectArray(breakdownRules())),
	)
}

func breakdownRules() objectRules {
	return newObjectRules(
		field("name", required, str()),
		field("score", required, numberBetween(minScore, maxScore)),
		field("earned", required, numberAtLeast(0)),
		field("possible", required, numberAtLeast(0)),
	)
}

const (
	required = true
	optional = false
)

// namedRule is a declaration-order entry used by newObjectRules.
type namedRule struct {
	name string
	rule fieldRule
}

func field(name string, required bool, check checkFunc) namedRule {
	return namedRule{name: name, rule: fieldRule{required: required, check: check}}
}

func newObjectRules(fields ...namedRule) objectRules {
	r := objectRules{fields: make(map[string]fieldRule, len(fields))}
	for _, f := range fields {
		r.fields[f.name] = f.rule
		r.order = append(r.order, f.name)
	}
	return r
}

// asNumber extracts a numeric value from a parsed JSON field. encoding/json
// yields float64; int covers values built programmatically (e.g. by
// recovery synthesis).
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func boolean() checkFunc {
	return func(name string, v any) []string {
		if _, ok := v.(bool); !ok {
			return []string{fmt.Sprintf("field %q must be a boolean, got %s", name, jsonTypeName(v))}
		}
		return nil
	}
}

func str() checkFunc {
	return func(name string, v any) []string {
		if _, ok := v.(string); !ok {
			return []string{fmt.Sprintf("field %q must be a string, got %s", name, jsonTypeName(v))}
		}
		return nil
	}
}

func numberAtLeast(min float64) checkFunc {
	return func(name string, v any) []string {
		n, ok := asNumber(v)
		if !ok {
			return []string{fmt.Sprintf("field %q must be a number, got %s", name, jsonTypeName(v))}
		}
		if n < min {
			return []string{fmt.Sprintf("field %q must be at least %v, got %v", name, min, n)}
		}
		return nil
	}
}

func numberBetween(min, max float64) checkFunc {
	return func(name string, v any) []string {
		n, ok := asNumber(v)
		if !ok {
			return []string{fmt.Sprintf("field %q must be a number, got %s", name, jsonTypeName(v))}
		}
		if n < min || n > max {
			return []string{fmt.Sprintf("field %q must be between %v and %v inclusive, got %v", name, min, max, n)}
		}
		return nil
	}
}

func integerAtLeast(min float64) checkFunc {
	return func(name string, v any) []string {
		n, ok := asNumber(v)
		if !ok {
			return []string{fmt.Sprintf("field %q must be a number, got %s", name, jsonTypeName(v))}
		}
		if n != math.Trunc(n) {
			return []string{fmt.Sprintf("field %q must be an integer, got %v", name, n)}
		}
		if n < min {
			return []string{fmt.Sprintf("field %q must be at least %v, got %v", name, min, n)}
		}
		return nil
	}
}

func oneOf(allowed []string) checkFunc {
	return func(name string, v any) []string {
		s, ok := v.(string)
		if !ok {
			return []string{fmt.Sprintf("field %q must be a string, got %s", name, jsonTypeName(v))}
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return []string{fmt.Sprintf("field %q must be one of %v, got %q", name, allowed, s)}
	}
}

func stringArray() checkFunc {
	return func(name string, v any) []string {
		arr, ok := v.([]any)
		if !ok {
			return []string{fmt.Sprintf("field %q must be an array of strings, got %s", name, jsonTypeName(v))}
		}
		var violations []string
		for i, elem := range arr {
			if _, ok := elem.(string); !ok {
				violations = append(violations, fmt.Sprintf("field %q[%d] must be a string, got %s", name, i, jsonTypeName(elem)))
			}
		}
		return violations
	}
}

// objectArray validates a non-empty array whose elements each satisfy elem.
// Element violations are prefixed with their index so recovery heuristics
// can locate the defective entry.
func objectArray(elem objectRules) checkFunc {
	return func(name string, v any) []string {
		arr, ok := v.([]any)
		if !ok {
			return []string{fmt.Sprintf("field %q must be an array of objects, got %s", name, jsonTypeName(v))}
		}
		if len(arr) == 0 {
			return []string{fmt.Sprintf("field %q must contain at least one element", name)}
		}
		var violations []string
		for i, e := range arr {
			obj, ok := e.(map[string]any)
			if !ok {
				violations = append(violations, fmt.Sprintf("field %q[%d] must be an object, got %s", name, i, jsonTypeName(e)))
				continue
			}
			prefix := fmt.Sprintf("%s[%d]: ", name, i)
			violations = append(violations, elem.validate(prefix, obj)...)
		}
		return violations
	}
}

// Package schema validates parsed LLM payloads against the declared record
// shapes. Validation is pure and synchronous: no I/O, no shared state.
//
// A RuleSet is the compiled form of one record kind's schema. Compilation is
// cheap but not free, so hot paths should obtain rule sets through the
// validator cache rather than calling Compile per request.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
)

// checkFunc validates one field value. It returns every violation found for
// that field; name is the wire-level field name used in messages.
type checkFunc func(name string, v any) []string

// fieldRule pairs presence requirements with a value check.
type fieldRule struct {
	required bool
	check    checkFunc
}

// objectRules is the compiled shape of one JSON object.
type objectRules struct {
	fields map[string]fieldRule
	order  []string // declaration order, for stable violation output
}

// RuleSet is a compiled validator for one record kind. It is immutable after
// Compile and safe for concurrent use.
type RuleSet struct {
	kind model.RecordKind
	root objectRules
}

// Compile builds the rule set for kind.
func Compile(kind model.RecordKind) (*RuleSet, error) {
	root, ok := rulesFor(kind)
	if !ok {
		return nil, fmt.Errorf("compile %q: %w", kind, ErrUnknownKind)
	}
	return &RuleSet{kind: kind, root: root}, nil
}

// Kind returns the record kind this rule set validates.
func (rs *RuleSet) Kind() model.RecordKind {
	return rs.kind
}

// Validate checks value against the compiled schema. It reports every
// violation found, including unknown fields; out-of-range numbers are
// violations, never clamped (clamping is a recovery concern).
func (rs *RuleSet) Validate(value any) model.ValidationOutcome {
	obj, ok := value.(map[string]any)
	if !ok {
		return model.ValidationOutcome{
			Violations: []string{fmt.Sprintf("payload must be a JSON object, got %s", jsonTypeName(value))},
		}
	}

	violations := rs.root.validate("", obj)
	if len(violations) > 0 {
		return model.ValidationOutcome{Violations: violations}
	}

	typed, err := toTyped(rs.kind, obj)
	if err != nil {
		return model.ValidationOutcome{
			Violations: []string{fmt.Sprintf("payload could not be decoded: %v", err)},
		}
	}
	return model.ValidationOutcome{Accepted: true, Value: typed}
}

// Validate compiles the schema for kind and validates value against it.
// Callers on the hot path should go through the validator cache instead.
func Validate(value any, kind model.RecordKind) model.ValidationOutcome {
	rs, err := Compile(kind)
	if err != nil {
		return model.ValidationOutcome{Violations: []string{err.Error()}}
	}
	return rs.Validate(value)
}

// validate walks obj against the rule table. prefix is prepended to every
// message so nested element violations carry their path.
func (r objectRules) validate(prefix string, obj map[string]any) []string {
	var violations []string

	for _, name := range r.order {
		rule := r.fields[name]
		v, present := obj[name]
		if !present {
			if rule.required {
				violations = append(violations, prefix+fmt.Sprintf("missing required field %q", name))
			}
			continue
		}
		for _, msg := range rule.check(name, v) {
			violations = append(violations, prefix+msg)
		}
	}

	// Extra keys are violations, not silently dropped. Sorted so the output
	// is stable regardless of map iteration order.
	var extras []string
	for key := range obj {
		if _, declared := r.fields[key]; !declared {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		violations = append(violations, prefix+fmt.Sprintf("unexpected field %q", key))
	}

	return violations
}

// toTyped converts an accepted raw object into its typed record.
func toTyped(kind model.RecordKind, obj map[string]any) (any, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	switch kind {
	case model.KindSingle:
		var item model.ScoredItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode scored item: %w", err)
		}
		return item, nil
	case model.KindBatch:
		var batch model.BatchRecord
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, fmt.Errorf("decode batch record: %w", err)
		}
		return batch, nil
	case model.KindAnalysis:
		var analysis model.AnalysisRecord
		if err := json.Unmarshal(raw, &analysis); err != nil {
			return nil, fmt.Errorf("decode analysis record: %w", err)
		}
		return analysis, nil
	default:
		return nil, ErrUnknownKind
	}
}

// jsonTypeName names a parsed JSON value the way callers saw it on the wire.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/schema"
	. "github.com/smartystreets/goconvey/convey"
)

func parse(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("test payload does not parse: %v", err)
	}
	return v
}

func TestValidate_ScoredItem(t *testing.T) {
	Convey("Given a compiled scored-item schema", t, func() {
		rs, err := schema.Compile(model.KindSingle)
		So(err, ShouldBeNil)
		So(rs.Kind(), ShouldEqual, model.KindSingle)

		Convey("When validating a conformant item", func() {
			value := parse(t, `{"questionNumber":1,"isCorrect":true,"pointsEarned":1,"confidence":0.9,"reasoning":"clear work","skillTags":["algebra"]}`)
			outcome := rs.Validate(value)

			Convey("Then it should be accepted with a typed value", func() {
				So(outcome.Accepted, ShouldBeTrue)
				So(outcome.Violations, ShouldBeEmpty)
				item, ok := outcome.Value.(model.ScoredItem)
				So(ok, ShouldBeTrue)
				So(item.QuestionNumber, ShouldEqual, 1)
				So(item.PointsEarned, ShouldEqual, 1.0)
				So(item.SkillTags, ShouldResemble, []string{"algebra"})
			})

			Convey("And validating it a second time should yield the same outcome", func() {
				again := rs.Validate(value)
				So(again.Accepted, ShouldBeTrue)
				So(again.Violations, ShouldBeEmpty)
			})
		})

		Convey("When required fields are missing", func() {
			outcome := rs.Validate(parse(t, `{"isCorrect":true}`))

			Convey("Then every missing field should be named", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `missing required field "questionNumber"`)
				So(outcome.Violations, ShouldContain, `missing required field "pointsEarned"`)
				So(outcome.Violations, ShouldContain, `missing required field "confidence"`)
			})
		})

		Convey("When numeric fields are out of range", func() {
			outcome := rs.Validate(parse(t, `{"questionNumber":0,"isCorrect":true,"pointsEarned":-2,"confidence":1.5}`))

			Convey("Then bounds should be violations, never clamped", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(len(outcome.Violations), ShouldEqual, 3)
				So(outcome.Violations, ShouldContain, `field "confidence" must be between 0 and 1 inclusive, got 1.5`)
			})
		})

		Convey("When the ordinal is not an integer", func() {
			outcome := rs.Validate(parse(t, `{"questionNumber":1.5,"isCorrect":true,"pointsEarned":0,"confidence":0.5}`))

			Convey("Then it should be rejected", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `field "questionNumber" must be an integer, got 1.5`)
			})
		})

		Convey("When the payload carries undeclared fields", func() {
			outcome := rs.Validate(parse(t, `{"questionNumber":1,"isCorrect":true,"pointsEarned":1,"confidence":0.9,"grader":"gpt"}`))

			Convey("Then the extra key should be a violation, not dropped", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `unexpected field "grader"`)
			})
		})

		Convey("When the payload is not an object", func() {
			outcome := rs.Validate(parse(t, `[1,2,3]`))

			Convey("Then it should be rejected with a shape violation", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations[0], ShouldContainSubstring, "must be a JSON object")
			})
		})
	})
}

func TestValidate_BatchRecord(t *testing.T) {
	Convey("Given the batch schema", t, func() {
		Convey("When validating a conformant batch", func() {
			value := parse(t, `{"items":[{"questionNumber":1,"isCorrect":true,"pointsEarned":2,"confidence":0.8}],"batchId":"b-1","elapsedMs":120,"modelId":"gpt-4o"}`)
			outcome := schema.Validate(value, model.KindBatch)

			Convey("Then it should be accepted with typed items", func() {
				So(outcome.Accepted, ShouldBeTrue)
				batch, ok := outcome.Value.(model.BatchRecord)
				So(ok, ShouldBeTrue)
				So(len(batch.Items), ShouldEqual, 1)
				So(batch.BatchID, ShouldEqual, "b-1")
			})
		})

		Convey("When the items list is empty", func() {
			outcome := schema.Validate(parse(t, `{"items":[]}`), model.KindBatch)

			Convey("Then it should be rejected", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `field "items" must contain at least one element`)
			})
		})

		Convey("When one element is defective", func() {
			value := parse(t, `{"items":[{"questionNumber":1,"isCorrect":true,"pointsEarned":2,"confidence":0.8},{"questionNumber":2,"isCorrect":false,"pointsEarned":0}]}`)
			outcome := schema.Validate(value, model.KindBatch)

			Convey("Then the violation should carry the element index", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `items[1]: missing required field "confidence"`)
			})
		})

		Convey("When the envelope is a bare array", func() {
			outcome := schema.Validate(parse(t, `[{"questionNumber":1,"isCorrect":true,"pointsEarned":2,"confidence":0.8}]`), model.KindBatch)

			Convey("Then it should be rejected as a shape violation", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations[0], ShouldContainSubstring, "must be a JSON object")
			})
		})
	})
}

func TestValidate_AnalysisRecord(t *testing.T) {
	Convey("Given the analysis schema", t, func() {
		Convey("When validating a conformant record", func() {
			value := parse(t, `{"overallScore":87.5,"letterGrade":"B","earned":35,"possible":40,"feedback":"solid","skillBreakdowns":[{"name":"algebra","score":90,"earned":18,"possible":20}]}`)
			outcome := schema.Validate(value, model.KindAnalysis)

			Convey("Then it should be accepted", func() {
				So(outcome.Accepted, ShouldBeTrue)
				analysis, ok := outcome.Value.(model.AnalysisRecord)
				So(ok, ShouldBeTrue)
				So(analysis.LetterGrade, ShouldEqual, "B")
				So(len(analysis.SkillBreakdowns), ShouldEqual, 1)
			})
		})

		Convey("When the letter grade is outside the closed set", func() {
			outcome := schema.Validate(parse(t, `{"overallScore":50,"letterGrade":"E","earned":5,"possible":10}`), model.KindAnalysis)

			Convey("Then it should be rejected", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `field "letterGrade" must be one of [A B C D F], got "E"`)
			})
		})

		Convey("When the overall score exceeds 100", func() {
			outcome := schema.Validate(parse(t, `{"overallScore":101,"letterGrade":"A","earned":10,"possible":10}`), model.KindAnalysis)

			Convey("Then it should be rejected", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(outcome.Violations, ShouldContain, `field "overallScore" must be between 0 and 100 inclusive, got 101`)
			})
		})

		Convey("When earned exceeds possible", func() {
			outcome := schema.Validate(parse(t, `{"overallScore":100,"letterGrade":"A","earned":12,"possible":10}`), model.KindAnalysis)

			Convey("Then it should still be accepted (business rule, not structure)", func() {
				So(outcome.Accepted, ShouldBeTrue)
			})
		})
	})
}

func TestCompile_UnknownKind(t *testing.T) {
	Convey("Given an unknown record kind", t, func() {
		_, err := schema.Compile(model.RecordKind("essay"))

		Convey("Then compilation should fail with the sentinel", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, schema.ErrUnknownKind), ShouldBeTrue)
		})
	})
}

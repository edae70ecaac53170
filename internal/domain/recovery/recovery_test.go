package recovery_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/recovery"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestRecover_DirectRetry(t *testing.T) {
	Convey("Given the built-in strategy ladder", t, func() {
		ctx := context.Background()
		o := recovery.New()

		Convey("When the payload is valid JSON wrapped in a code fence", func() {
			raw := "```json\n{\"questionNumber\":1,\"isCorrect\":true,\"pointsEarned\":1,\"confidence\":0.9}\n```"
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				RequestID:  "req-1",
				Reason:     recovery.FailureMalformedJSON,
				Raw:        raw,
				RecordKind: model.KindSingle,
			})

			Convey("Then the first strategy fixes it", func() {
				So(err, ShouldBeNil)
				So(outcome.Accepted, ShouldBeTrue)
				So(sess.Succeeded, ShouldBeTrue)
				So(sess.StrategyName, ShouldEqual, recovery.StrategyDirectRetry)
				So(sess.AttemptCount, ShouldEqual, 1)
			})

			Convey("And the session carries its provenance", func() {
				So(sess.ID, ShouldNotBeEmpty)
				So(sess.SourceRequestID, ShouldEqual, "req-1")
				So(sess.FailureKind, ShouldEqual, recovery.FailureMalformedJSON)
			})
		})

		Convey("When the payload has a stray trailing comma", func() {
			raw := `{"questionNumber":2,"isCorrect":false,"pointsEarned":0,"confidence":0.4,}`
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureMalformedJSON,
				Raw:        raw,
				RecordKind: model.KindSingle,
			})

			Convey("Then cleanup makes it parse", func() {
				So(err, ShouldBeNil)
				So(sess.StrategyName, ShouldEqual, recovery.StrategyDirectRetry)
				item, ok := outcome.Value.(model.ScoredItem)
				So(ok, ShouldBeTrue)
				So(item.QuestionNumber, ShouldEqual, 2)
			})
		})

		Convey("When the JSON is buried in surrounding prose", func() {
			raw := "Here is the grading result:\n{\"questionNumber\":3,\"isCorrect\":true,\"pointsEarned\":2,\"confidence\":0.8}\nLet me know if you need anything else."
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureMalformedJSON,
				Raw:        raw,
				RecordKind: model.KindSingle,
			})

			Convey("Then the object region is extracted and accepted", func() {
				So(err, ShouldBeNil)
				So(outcome.Accepted, ShouldBeTrue)
				So(sess.AttemptCount, ShouldEqual, 1)
			})
		})
	})
}

func TestRecover_SchemaCorrection(t *testing.T) {
	Convey("Given the built-in strategy ladder", t, func() {
		ctx := context.Background()
		o := recovery.New()

		Convey("When a fenced single item is missing its numeric fields", func() {
			raw := "```json\n{\"isCorrect\":true}\n```"
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureMalformedJSON,
				Raw:        raw,
				RecordKind: model.KindSingle,
			})

			Convey("Then escalation stops at the second strategy", func() {
				So(err, ShouldBeNil)
				So(sess.Succeeded, ShouldBeTrue)
				So(sess.AttemptCount, ShouldEqual, 2)
				So(sess.StrategyName, ShouldEqual, recovery.StrategySchemaCorrection)
			})

			Convey("And safe defaults are injected alongside the present flag", func() {
				item, ok := outcome.Value.(model.ScoredItem)
				So(ok, ShouldBeTrue)
				So(item.IsCorrect, ShouldBeTrue)
				So(item.QuestionNumber, ShouldEqual, 1)
				So(item.PointsEarned, ShouldEqual, 0.0)
				So(item.Confidence, ShouldEqual, 0.5)
			})
		})

		Convey("When a batch arrives as a bare array", func() {
			raw := `[{"questionNumber":1,"isCorrect":true,"pointsEarned":1,"confidence":0.9}]`
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureSchemaViolation,
				Raw:        raw,
				RecordKind: model.KindBatch,
			})

			Convey("Then it is wrapped into the items envelope", func() {
				So(err, ShouldBeNil)
				So(sess.StrategyName, ShouldEqual, recovery.StrategySchemaCorrection)
				batch, ok := outcome.Value.(model.BatchRecord)
				So(ok, ShouldBeTrue)
				So(len(batch.Items), ShouldEqual, 1)
			})
		})

		Convey("When an analysis record is missing its grade pair", func() {
			raw := `{"feedback":"model returned prose instead of scores"}`
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureSchemaViolation,
				Raw:        raw,
				RecordKind: model.KindAnalysis,
			})

			Convey("Then defaults are injected and the record validates", func() {
				So(err, ShouldBeNil)
				So(sess.StrategyName, ShouldEqual, recovery.StrategySchemaCorrection)
				analysis, ok := outcome.Value.(model.AnalysisRecord)
				So(ok, ShouldBeTrue)
				So(analysis.OverallScore, ShouldEqual, 0.0)
				So(analysis.LetterGrade, ShouldEqual, "F")
			})
		})
	})
}

func TestRecover_FallbackSynthesis(t *testing.T) {
	Convey("Given the built-in strategy ladder", t, func() {
		ctx := context.Background()
		o := recovery.New()

		Convey("When the payload is unsalvageable prose", func() {
			raw := "I am sorry, I cannot grade this submission."

			Convey("And the kind is single", func() {
				outcome, sess, err := o.Recover(ctx, recovery.Failure{
					Reason:     recovery.FailureMalformedJSON,
					Raw:        raw,
					RecordKind: model.KindSingle,
				})

				Convey("Then a flagged placeholder is synthesized on the third attempt", func() {
					So(err, ShouldBeNil)
					So(sess.AttemptCount, ShouldEqual, 3)
					So(sess.StrategyName, ShouldEqual, recovery.StrategyFallbackSynthesis)
					item, ok := outcome.Value.(model.ScoredItem)
					So(ok, ShouldBeTrue)
					So(item.PointsEarned, ShouldEqual, 0.0)
					So(strings.HasPrefix(item.Reasoning, "recovery fallback"), ShouldBeTrue)
				})
			})

			Convey("And the kind is batch with a question count in context", func() {
				outcome, _, err := o.Recover(ctx, recovery.Failure{
					Reason:     recovery.FailureMalformedJSON,
					Raw:        raw,
					RecordKind: model.KindBatch,
					Context:    model.RequestContext{QuestionCount: 4},
				})

				Convey("Then one placeholder per question is produced", func() {
					So(err, ShouldBeNil)
					batch, ok := outcome.Value.(model.BatchRecord)
					So(ok, ShouldBeTrue)
					So(len(batch.Items), ShouldEqual, 4)
					So(batch.Items[3].QuestionNumber, ShouldEqual, 4)
				})
			})

			Convey("And the kind is batch with only a file count", func() {
				outcome, _, err := o.Recover(ctx, recovery.Failure{
					Reason:     recovery.FailureMalformedJSON,
					Raw:        raw,
					RecordKind: model.KindBatch,
					Context:    model.RequestContext{FileCount: 2},
				})

				Convey("Then the count is inferred at five per file", func() {
					So(err, ShouldBeNil)
					batch := outcome.Value.(model.BatchRecord)
					So(len(batch.Items), ShouldEqual, 10)
				})
			})

			Convey("And the kind is analysis", func() {
				outcome, _, err := o.Recover(ctx, recovery.Failure{
					Reason:     recovery.FailureMalformedJSON,
					Raw:        raw,
					RecordKind: model.KindAnalysis,
				})

				Convey("Then a zero-score failing record with explanatory feedback is produced", func() {
					So(err, ShouldBeNil)
					analysis := outcome.Value.(model.AnalysisRecord)
					So(analysis.LetterGrade, ShouldEqual, "F")
					So(strings.HasPrefix(analysis.Feedback, "recovery fallback"), ShouldBeTrue)
				})
			})
		})
	})
}

func TestRecover_Exhaustion(t *testing.T) {
	Convey("Given a failure no strategy can fix", t, func() {
		ctx := context.Background()
		o := recovery.New()

		Convey("When recovering a payload for an unknown kind", func() {
			outcome, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureSchemaViolation,
				Raw:        `{"anything":true}`,
				RecordKind: model.RecordKind("essay"),
				Violations: []string{"initial violation"},
			})

			Convey("Then the session exhausts after exactly the attempt ceiling", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, recovery.ErrRecoveryExhausted), ShouldBeTrue)
				So(sess.Succeeded, ShouldBeFalse)
				So(sess.AttemptCount, ShouldEqual, 3)
			})

			Convey("And the violation chain is preserved for diagnostics", func() {
				So(outcome.Violations, ShouldNotBeEmpty)
				So(outcome.Violations[0], ShouldEqual, "initial violation")
			})
		})
	})

	Convey("Given a lowered attempt ceiling", t, func() {
		ctx := context.Background()
		o := recovery.New(recovery.WithMaxAttempts(1))

		Convey("When the first strategy cannot fix the payload", func() {
			_, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureMalformedJSON,
				Raw:        "not json at all",
				RecordKind: model.KindSingle,
			})

			Convey("Then no further strategies run", func() {
				So(errors.Is(err, recovery.ErrRecoveryExhausted), ShouldBeTrue)
				So(sess.AttemptCount, ShouldEqual, 1)
			})
		})
	})
}

func TestRecover_StrategyPanic(t *testing.T) {
	Convey("Given a strategy that panics", t, func() {
		ctx := context.Background()
		o := recovery.New(
			recovery.WithStrategies(recovery.Strategy{
				Name:     "explosive",
				Priority: 1,
				Attempt: func(ctx context.Context, f recovery.Failure) (any, error) {
					panic("boom")
				},
			}),
			recovery.WithMaxAttempts(1),
		)

		Convey("When recovery runs", func() {
			_, sess, err := o.Recover(ctx, recovery.Failure{
				Reason:     recovery.FailureMalformedJSON,
				Raw:        "x",
				RecordKind: model.KindSingle,
			})

			Convey("Then the panic is contained and the session finalizes failed", func() {
				So(errors.Is(err, recovery.ErrRecoveryExhausted), ShouldBeTrue)
				So(sess.Succeeded, ShouldBeFalse)
				So(sess.AttemptCount, ShouldEqual, 1)
			})
		})
	})
}

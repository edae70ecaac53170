package optimizer_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/adapters/cache"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/optimizer"
	. "github.com/smartystreets/goconvey/convey"
)

func validSingle(t *testing.T) any {
	t.Helper()
	var v any
	raw := `{"questionNumber":1,"isCorrect":true,"pointsEarned":1,"confidence":0.9}`
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("test payload does not parse: %v", err)
	}
	return v
}

func TestTrackedValidate(t *testing.T) {
	Convey("Given an optimizer over a fresh cache", t, func() {
		ctx := context.Background()
		c := cache.New()
		o := optimizer.New(c)

		Convey("When validating a conformant payload twice", func() {
			outcome1, sample1 := o.TrackedValidate(ctx, validSingle(t), model.KindSingle, 0)
			outcome2, sample2 := o.TrackedValidate(ctx, validSingle(t), model.KindSingle, 0)

			Convey("Then both validations succeed", func() {
				So(outcome1.Accepted, ShouldBeTrue)
				So(outcome2.Accepted, ShouldBeTrue)
				So(sample1.Succeeded, ShouldBeTrue)
				So(sample2.Succeeded, ShouldBeTrue)
			})

			Convey("And the second one is served from cache", func() {
				So(sample1.FromCache, ShouldBeFalse)
				So(sample2.FromCache, ShouldBeTrue)
			})

			Convey("And two samples are held", func() {
				So(o.SampleCount(), ShouldEqual, 2)
			})
		})

		Convey("When validating a defective payload", func() {
			var v any
			So(json.Unmarshal([]byte(`{"isCorrect":true}`), &v), ShouldBeNil)
			outcome, sample := o.TrackedValidate(ctx, v, model.KindSingle, 0)

			Convey("Then the sample records the failure", func() {
				So(outcome.Accepted, ShouldBeFalse)
				So(sample.Succeeded, ShouldBeFalse)
			})
		})
	})
}

func TestSampleBufferBound(t *testing.T) {
	Convey("Given an optimizer with a capacity of 10 samples", t, func() {
		c := cache.New()
		o := optimizer.New(c, optimizer.WithSampleCapacity(10))

		Convey("When 25 samples are observed", func() {
			for i := 0; i < 25; i++ {
				o.Observe(optimizer.Sample{Kind: model.KindSingle, ValidationMS: 1, Succeeded: true})
			}

			Convey("Then the buffer holds only the newest 10", func() {
				So(o.SampleCount(), ShouldEqual, 10)
			})
		})
	})
}

func TestRecommend(t *testing.T) {
	Convey("Given an optimizer with stock thresholds", t, func() {
		ctx := context.Background()
		c := cache.New()
		o := optimizer.New(c)

		Convey("When no samples exist yet", func() {
			report := o.Recommend(ctx)

			Convey("Then it reports no data instead of dividing by zero", func() {
				So(report.Summary, ShouldEqual, "no performance data available")
				So(report.SampleCount, ShouldEqual, 0)
			})
		})

		Convey("When recent validations are fast and cache-friendly", func() {
			// Warm the cache so the hit rate is high.
			for i := 0; i < 20; i++ {
				_, _, err := c.GetOrCompile(ctx, model.KindSingle)
				So(err, ShouldBeNil)
			}
			for i := 0; i < 20; i++ {
				o.Observe(optimizer.Sample{Kind: model.KindSingle, BatchSize: 10, ValidationMS: 2, FromCache: true, Succeeded: true})
			}
			report := o.Recommend(ctx)

			Convey("Then performance is reported optimal", func() {
				So(report.Summary, ShouldEqual, "performance is optimal")
				So(report.Suggestions, ShouldBeEmpty)
				So(report.MeanValidationMS, ShouldEqual, 2)
				So(report.OptimalBatchSize, ShouldEqual, 10)
			})
		})

		Convey("When mean validation time is slow", func() {
			for i := 0; i < 10; i++ {
				o.Observe(optimizer.Sample{Kind: model.KindSingle, ValidationMS: 250, Succeeded: true})
			}
			report := o.Recommend(ctx)

			Convey("Then it suggests parallelizing large batches", func() {
				So(report.Suggestions, ShouldNotBeEmpty)
				So(report.Suggestions[0], ShouldContainSubstring, "parallelizing")
			})
		})

		Convey("When the best per-item time sits above the increase threshold", func() {
			o.Observe(optimizer.Sample{Kind: model.KindBatch, BatchSize: 25, ValidationMS: 25, Succeeded: true})
			o.Observe(optimizer.Sample{Kind: model.KindBatch, BatchSize: 10, ValidationMS: 50, Succeeded: true})
			report := o.Recommend(ctx)

			Convey("Then it recommends a larger configured batch size", func() {
				So(report.OptimalBatchSize, ShouldEqual, 25)
				found := false
				for _, s := range report.Suggestions {
					if strings.Contains(s, "increase the configured batch size") {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When per-item times tie across batch sizes", func() {
			o.Observe(optimizer.Sample{Kind: model.KindBatch, BatchSize: 10, ValidationMS: 10, Succeeded: true})
			o.Observe(optimizer.Sample{Kind: model.KindBatch, BatchSize: 30, ValidationMS: 30, Succeeded: true})
			report := o.Recommend(ctx)

			Convey("Then the smaller size wins the tie", func() {
				So(report.OptimalBatchSize, ShouldEqual, 10)
			})
		})
	})
}

func TestBaselineEstimatorOverride(t *testing.T) {
	Convey("Given an optimizer with a custom baseline estimator", t, func() {
		ctx := context.Background()
		c := cache.New()
		o := optimizer.New(c,
			optimizer.WithBaselineEstimator(func(batchSize int) float64 { return 10 }),
			optimizer.WithThresholds(optimizer.Thresholds{OverheadPct: 15}),
		)

		Convey("When validation takes a fifth of the baseline", func() {
			o.Observe(optimizer.Sample{Kind: model.KindSingle, ValidationMS: 2, Succeeded: true})
			report := o.Recommend(ctx)

			Convey("Then the overhead percentage uses the injected estimate", func() {
				So(report.OverheadPct, ShouldEqual, 20)
				So(report.Suggestions, ShouldNotBeEmpty)
			})
		})
	})
}

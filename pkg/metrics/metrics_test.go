package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording validation metrics", func() {
			Convey("Then it should record outcomes and latency", func() {
				So(func() {
					RecordValidation("single", true)
					RecordValidation("batch", false)
					RecordValidationLatency(12.5)
					RecordParseFailure()
					RecordSchemaViolation()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording cache metrics", func() {
			Convey("Then it should record hits, misses and size", func() {
				So(func() {
					RecordCacheHit()
					RecordCacheMiss()
					RecordCacheInsertion()
					RecordCacheEviction()
					RecordCacheStaleRecompile()
					UpdateCacheSize(3)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording recovery metrics", func() {
			Convey("Then it should record attempts and sessions", func() {
				So(func() {
					RecordRecoveryAttempt("direct_retry")
					RecordRecoveryLatency(4.2)
					RecordRecoverySession("schema_correction", true)
					RecordRecoverySession("", false)
					RecordRecoveryExhausted()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording batch metrics", func() {
			Convey("Then it should record batch counters", func() {
				So(func() {
					RecordBatch(10)
					RecordBatchLatency(55.0)
					RecordBatchItemFailure()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record requests and durations", func() {
				So(func() {
					RecordHTTPRequest("/validate", "POST", "200")
					RecordHTTPRequestDuration("/validate", "POST", "200", 3.4)
				}, ShouldNotPanic)
			})
		})

		Convey("When updating system metrics", func() {
			Convey("Then it should update the gauges", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024)
					UpdateSystemGoroutineCount(42)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the global metrics registry", t, func() {
		Convey("When retrieving it", func() {
			registry := GetRegistry()

			Convey("Then it should expose gatherable metric families", func() {
				So(registry, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeNil)
			})
		})
	})
}

// Package optimizer wraps validation calls with wall-clock timing and turns
// the accumulated samples into tuning recommendations.
package optimizer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/adapters/cache"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/metrics"
)

// Default optimizer configuration constants.
const (
	defaultSampleCapacity = 1000
	defaultWindow         = 100

	// Baseline estimate of total processing time for overhead%. These have
	// no empirical grounding; they are the published heuristic and can be
	// replaced via WithBaselineEstimator.
	perItemBaselineMS = 100.0
	flatBaselineMS    = 1000.0
)

// Report messages.
const (
	summaryNoData  = "no performance data available"
	summaryOptimal = "performance is optimal"
)

// Sample records one tracked validation. Read-only once appended.
type Sample struct {
	Kind         model.RecordKind
	BatchSize    int
	ValidationMS float64
	FromCache    bool
	Succeeded    bool
}

// Thresholds are the tunable trigger points for recommendations.
type Thresholds struct {
	// SlowValidationMS triggers the parallelize suggestion.
	SlowValidationMS float64
	// OverheadPct triggers the cache-tuning suggestion.
	OverheadPct float64
	// MinHitRate (0..1) triggers the TTL/pre-warm suggestion.
	MinHitRate float64
	// BatchIncrease and BatchDecrease bound the optimal-batch-size band.
	BatchIncrease int
	BatchDecrease int
}

// DefaultThresholds returns the stock trigger points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SlowValidationMS: 100,
		OverheadPct:      15,
		MinHitRate:       0.70,
		BatchIncrease:    20,
		BatchDecrease:    5,
	}
}

// BaselineEstimator estimates total processing time in milliseconds for a
// request with the given batch-size hint (0 = unknown).
type BaselineEstimator func(batchSize int) float64

// defaultBaseline is batchSize x 100ms when the hint is known, else 1000ms.
func defaultBaseline(batchSize int) float64 {
	if batchSize > 0 {
		return float64(batchSize) * perItemBaselineMS
	}
	return flatBaselineMS
}

// Report is the outcome of one Recommend call.
type Report struct {
	SampleCount      int      `json:"sampleCount"`
	MeanValidationMS float64  `json:"meanValidationMs"`
	OverheadPct      float64  `json:"overheadPct"`
	CacheHitRate     float64  `json:"cacheHitRate"`
	OptimalBatchSize int      `json:"optimalBatchSize"`
	Suggestions      []string `json:"suggestions,omitempty"`
	Summary          string   `json:"summary"`
}

// Optimizer times validations through the validator cache and keeps a
// bounded rolling history of samples. Safe for concurrent use.
type Optimizer struct {
	cache *cache.Cache

	mu      sync.Mutex
	samples []Sample // ring buffer
	next    int
	count   int

	capacity   int
	window     int
	thresholds Thresholds
	estimate   BaselineEstimator
}

// New creates an optimizer over the given validator cache.
func New(c *cache.Cache, opts ...Option) *Optimizer {
	o := &Optimizer{
		cache:      c,
		capacity:   defaultSampleCapacity,
		window:     defaultWindow,
		thresholds: DefaultThresholds(),
		estimate:   defaultBaseline,
	}

	for _, opt := range opts {
		opt(o)
	}

	o.samples = make([]Sample, o.capacity)
	return o
}

// TrackedValidate runs a cache lookup plus schema validation, timing the
// whole operation and appending a sample to the rolling buffer.
// batchSizeHint tags the sample for batch-size tuning; pass 0 when unknown.
func (o *Optimizer) TrackedValidate(ctx context.Context, value any, kind model.RecordKind, batchSizeHint int) (model.ValidationOutcome, Sample) {
	start := time.Now()

	var outcome model.ValidationOutcome
	rs, fromCache, err := o.cache.GetOrCompile(ctx, kind)
	if err != nil {
		outcome = model.ValidationOutcome{Violations: []string{err.Error()}}
	} else {
		outcome = rs.Validate(value)
	}

	elapsedMS := float64(time.Since(start).Microseconds()) / 1e3
	sample := Sample{
		Kind:         kind,
		BatchSize:    batchSizeHint,
		ValidationMS: elapsedMS,
		FromCache:    fromCache,
		Succeeded:    outcome.Accepted,
	}
	o.append(sample)
	metrics.RecordValidationLatency(elapsedMS)

	return outcome, sample
}

// Observe appends an externally produced sample, e.g. a per-chunk timing
// from the batch layer. Samples are read-only once appended.
func (o *Optimizer) Observe(s Sample) {
	o.append(s)
}

// append pushes a sample into the ring, dropping the oldest on overflow.
func (o *Optimizer) append(s Sample) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.samples[o.next] = s
	o.next = (o.next + 1) % o.capacity
	if o.count < o.capacity {
		o.count++
	}
}

// SampleCount returns the number of samples currently held.
func (o *Optimizer) SampleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

// recent returns up to n of the most recent samples in chronological order.
func (o *Optimizer) recent(n int) []Sample {
	o.mu.Lock()
	defer o.mu.Unlock()

	if n > o.count {
		n = o.count
	}
	out := make([]Sample, 0, n)
	start := o.next - n
	for i := 0; i < n; i++ {
		idx := (start + i + o.capacity) % o.capacity
		out = append(out, o.samples[idx])
	}
	return out
}

// Recommend derives tuning advice from the most recent samples and the
// cache counters.
func (o *Optimizer) Recommend(ctx context.Context) Report {
	window := o.recent(o.window)
	if len(window) == 0 {
		return Report{Summary: summaryNoData}
	}

	var totalMS, totalOverhead float64
	for _, s := range window {
		totalMS += s.ValidationMS
		totalOverhead += s.ValidationMS / o.estimate(s.BatchSize) * 100
	}
	meanMS := totalMS / float64(len(window))
	overheadPct := totalOverhead / float64(len(window))

	stats := o.cache.Stats()
	hitRate := 1.0
	if denom := stats.Hits + stats.Insertions; denom > 0 {
		hitRate = float64(stats.Hits) / float64(denom)
	}

	optimal := optimalBatchSize(window)

	report := Report{
		SampleCount:      len(window),
		MeanValidationMS: meanMS,
		OverheadPct:      overheadPct,
		CacheHitRate:     hitRate,
		OptimalBatchSize: optimal,
	}

	t := o.thresholds
	if meanMS > t.SlowValidationMS {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("mean validation time %.1fms exceeds %.1fms; consider parallelizing large batches", meanMS, t.SlowValidationMS))
	}
	if overheadPct > t.OverheadPct {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("validation overhead %.1f%% exceeds %.1f%%; tune the validator cache", overheadPct, t.OverheadPct))
	}
	if hitRate < t.MinHitRate {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("cache hit rate %.0f%% is below %.0f%%; extend the TTL or pre-warm validators", hitRate*100, t.MinHitRate*100))
	}
	if optimal > t.BatchIncrease {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("optimal batch size %d exceeds %d; increase the configured batch size", optimal, t.BatchIncrease))
	}
	if optimal > 0 && optimal < t.BatchDecrease {
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("optimal batch size %d is below %d; decrease the configured batch size", optimal, t.BatchDecrease))
	}

	if len(report.Suggestions) == 0 {
		report.Summary = summaryOptimal
	} else {
		report.Summary = fmt.Sprintf("%d tuning suggestion(s)", len(report.Suggestions))
	}
	return report
}

// optimalBatchSize groups samples by batch-size hint and returns the size
// with the lowest mean per-item time. Ties prefer the smaller size; 0 means
// no sample carried a hint.
func optimalBatchSize(samples []Sample) int {
	totals := make(map[int]float64)
	counts := make(map[int]int)
	for _, s := range samples {
		if s.BatchSize <= 0 {
			continue
		}
		totals[s.BatchSize] += s.ValidationMS / float64(s.BatchSize)
		counts[s.BatchSize]++
	}
	if len(totals) == 0 {
		return 0
	}

	sizes := make([]int, 0, len(totals))
	for size := range totals {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)

	best, bestPerItem := 0, 0.0
	for _, size := range sizes {
		perItem := totals[size] / float64(counts[size])
		if best == 0 || perItem < bestPerItem {
			best, bestPerItem = size, perItem
		}
	}
	return best
}

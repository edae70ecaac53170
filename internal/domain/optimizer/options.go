// Package optimizer wraps validation calls with wall-clock timing and turns
// the accumulated samples into tuning recommendations.
package optimizer

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// WithSampleCapacity bounds the rolling sample buffer.
func WithSampleCapacity(capacity int) Option {
	return func(o *Optimizer) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithWindow sets how many recent samples Recommend considers.
func WithWindow(window int) Option {
	return func(o *Optimizer) {
		if window > 0 {
			o.window = window
		}
	}
}

// WithThresholds overrides recommendation trigger points. Zero-valued
// fields keep their defaults.
func WithThresholds(t Thresholds) Option {
	return func(o *Optimizer) {
		if t.SlowValidationMS > 0 {
			o.thresholds.SlowValidationMS = t.SlowValidationMS
		}
		if t.OverheadPct > 0 {
			o.thresholds.OverheadPct = t.OverheadPct
		}
		if t.MinHitRate > 0 {
			o.thresholds.MinHitRate = t.MinHitRate
		}
		if t.BatchIncrease > 0 {
			o.thresholds.BatchIncrease = t.BatchIncrease
		}
		if t.BatchDecrease > 0 {
			o.thresholds.BatchDecrease = t.BatchDecrease
		}
	}
}

// WithBaselineEstimator replaces the total-processing-time estimate used
// for the overhead percentage.
func WithBaselineEstimator(estimate BaselineEstimator) Option {
	return func(o *Optimizer) {
		if estimate != nil {
			o.estimate = estimate
		}
	}
}

package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/internal/domain/model"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/metrics"
)

// ValidateBatch runs the single-item path over items under bounded
// concurrency: items are partitioned into chunks of the configured
// concurrency, each chunk's items run in their own goroutines, and the
// next chunk starts only when the whole chunk has finished. Results are
// placed by input position, so order and IDs survive any completion
// interleaving within a chunk, and one item's failure or panic never
// aborts its siblings.
func (s *Service) ValidateBatch(ctx context.Context, items []BatchItem, kind model.RecordKind, opts BatchOptions) (BatchResult, error) {
	s.mu.RLock()
	started := s.started
	defaultConc := s.concurrency
	s.mu.RUnlock()
	if !started {
		return BatchResult{}, ErrNotStarted
	}

	if opts.Concurrency < 0 {
		return BatchResult{}, fmt.Errorf("concurrency must be positive, got %d: %w", opts.Concurrency, ErrInvalidOptions)
	}
	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = defaultConc
	}
	hint := opts.BatchSizeHint
	if hint == 0 {
		hint = len(items)
	}

	batchStart := time.Now()
	results := make([]Result, len(items))

	for chunkStart := 0; chunkStart < len(items); chunkStart += concurrency {
		chunkEnd := chunkStart + concurrency
		if chunkEnd > len(items) {
			chunkEnd = len(items)
		}

		var wg sync.WaitGroup
		for i := chunkStart; i < chunkEnd; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				// An unexpected panic in one item must not take down the
				// chunk; it becomes that item's failed result.
				defer func() {
					if r := recover(); r != nil {
						results[idx] = Result{
							ID:      items[idx].ID,
							Success: false,
							Errors:  []string{fmt.Sprintf("validation panicked: %v", r)},
							Metadata: Metadata{
								ValidationVersion: validationVersion,
							},
						}
					}
				}()

				res := s.ValidateOne(ctx, items[idx].Raw, kind, model.RequestContext{BatchSizeHint: hint})
				res.ID = items[idx].ID
				results[idx] = res
			}(i)
		}
		wg.Wait()
	}

	totalMS := msSince(batchStart)
	summary := summarize(results, totalMS)

	metrics.RecordBatch(len(items))
	metrics.RecordBatchLatency(totalMS)
	for _, r := range results {
		if !r.Success {
			metrics.RecordBatchItemFailure()
		}
	}

	report := s.optimizer.Recommend(ctx)
	var validationMS float64
	for _, r := range results {
		validationMS += r.Metadata.ProcessingMS
	}
	s.logger.Info(ctx, "batch validation completed",
		logger.String("operationType", "batch_validation"),
		logger.Int("batchSize", len(items)),
		logger.Float64("totalProcessingTimeMs", totalMS),
		logger.Float64("validationTimeMs", validationMS),
		logger.Float64("successRate", summary.successRate()),
		logger.Int("systemLoad", runtime.NumGoroutine()),
		logger.String("optimizationNotes", report.Summary),
	)

	return BatchResult{Results: results, Summary: summary}, nil
}

func summarize(results []Result, totalMS float64) Summary {
	s := Summary{
		TotalItems:        len(results),
		TotalProcessingMS: totalMS,
	}
	recovered := 0
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
		if r.Metadata.RecoveryUsed {
			recovered++
		}
	}
	if len(results) > 0 {
		s.AvgProcessingMS = totalMS / float64(len(results))
		s.RecoveryRate = float64(recovered) / float64(len(results))
	}
	return s
}

func (s Summary) successRate() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.TotalItems)
}

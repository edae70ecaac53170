package loadgen

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
)

// Reporting constants.
const (
	percentageMultiplier = 100
)

// Run executes the complete validation load test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting validation load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("payloads", config.NumPayloads),
		logger.Int("batchSize", config.BatchSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate payloads
	payloads, err := generatePayloads(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("payload generation failed: %w", err)
	}

	// Step 3: Submit payloads concurrently
	if err := submitPayloads(ctx, config, payloads, stats); err != nil {
		return fmt.Errorf("payload submission failed: %w", err)
	}

	// Step 4: Submit one batch through /validate/batch
	if err := submitBatch(ctx, config, stats); err != nil {
		return fmt.Errorf("batch submission failed: %w", err)
	}

	// Step 5: Fetch service stats for the run summary
	if err := fetchServiceStats(ctx, config); err != nil {
		logger.Get().Warn(ctx, "failed to fetch service stats", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.ShapeMismatches > 0 {
		return fmt.Errorf("detected %d shape mismatches", stats.ShapeMismatches)
	}

	logger.Get().Info(ctx, "load test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != 200 {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchServiceStats logs the service-side counters after the run.
func fetchServiceStats(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("stats returned status %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service stats", logger.String("body", string(body)))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, payloadsPerSecond float64

	if stats.PayloadsSubmitted > 0 {
		successRate = float64(stats.PayloadsSuccessful) / float64(stats.PayloadsSubmitted) * percentageMultiplier
	}

	if stats.Duration > 0 {
		payloadsPerSecond = float64(stats.PayloadsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("payloadsGenerated", stats.PayloadsGenerated),
		logger.Int("payloadsSubmitted", stats.PayloadsSubmitted),
		logger.Int("payloadsSuccessful", stats.PayloadsSuccessful),
		logger.Int("payloadsRecovered", stats.PayloadsRecovered),
		logger.Int("payloadsFailed", stats.PayloadsFailed),
		logger.Int("shapeMismatches", stats.ShapeMismatches),
		logger.Int("batchItems", stats.BatchItems),
		logger.Int("batchSucceeded", stats.BatchSucceeded),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("payloadsPerSecond", payloadsPerSecond))
}

package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PabloLuisGarcia30/scholar-journey-insights-sub002/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

// submitPayloads submits payloads concurrently using a worker pool.
func submitPayloads(ctx context.Context, config *Config, payloads []Payload, stats *Stats) error {
	logger.Get().Info(ctx, "submitting payloads",
		logger.Int("count", len(payloads)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/validate"

	var (
		submitted  int64
		successful int64
		recovered  int64
		failed     int64
		mismatched int64
	)

	payloadChan := make(chan Payload, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for p := range payloadChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res, err := submitSinglePayload(ctx, client, url, p)
				atomic.AddInt64(&submitted, 1)
				if err != nil || !res.Success {
					atomic.AddInt64(&failed, 1)
					continue
				}

				atomic.AddInt64(&successful, 1)
				if res.Metadata.RecoveryUsed {
					atomic.AddInt64(&recovered, 1)
				}
				// A clean payload that needed recovery (or a defective one
				// that did not) points at a validator or generator bug.
				if (p.Shape == ShapeClean) == res.Metadata.RecoveryUsed {
					atomic.AddInt64(&mismatched, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "shape mismatch",
							logger.String("id", p.ID),
							logger.String("shape", string(p.Shape)),
							logger.Bool("recoveryUsed", res.Metadata.RecoveryUsed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(payloadChan)
		for _, p := range payloads {
			select {
			case <-ctx.Done():
				return
			case payloadChan <- p:
			}
		}
	}()

	wg.Wait()

	stats.PayloadsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.PayloadsSuccessful = int(atomic.LoadInt64(&successful))
	stats.PayloadsRecovered = int(atomic.LoadInt64(&recovered))
	stats.PayloadsFailed = int(atomic.LoadInt64(&failed))
	stats.ShapeMismatches = int(atomic.LoadInt64(&mismatched))

	logger.Get().Info(ctx, "payload submission completed",
		logger.Int("successful", stats.PayloadsSuccessful),
		logger.Int("recovered", stats.PayloadsRecovered),
		logger.Int("failed", stats.PayloadsFailed),
		logger.Int("shapeMismatches", stats.ShapeMismatches))
	return nil
}

// submitSinglePayload posts one payload and decodes the result.
func submitSinglePayload(ctx context.Context, client *HTTPClient, url string, p Payload) (resultResponse, error) {
	var res resultResponse

	resp, err := client.Post(ctx, url, validateRequest{Payload: p.Body, Kind: p.Kind, SessionID: p.ID})
	if err != nil {
		return res, fmt.Errorf("post failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return res, fmt.Errorf("read response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return res, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return res, fmt.Errorf("decode response failed: %w", err)
	}
	return res, nil
}

// submitBatch posts one batch of clean payloads and records the summary.
func submitBatch(ctx context.Context, config *Config, stats *Stats) error {
	if config.BatchSize <= 0 {
		return nil
	}

	logger.Get().Info(ctx, "submitting batch", logger.Int("batchSize", config.BatchSize))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/validate/batch"

	resp, err := client.Post(ctx, url, batchRequest{
		Items: generateBatchItems(config.BatchSize),
		Kind:  "single",
	})
	if err != nil {
		return fmt.Errorf("batch post failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("batch read failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("batch returned status %d", resp.StatusCode)
	}

	var out batchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("batch decode failed: %w", err)
	}

	stats.BatchItems = out.Summary.TotalItems
	stats.BatchSucceeded = out.Summary.Succeeded

	logger.Get().Info(ctx, "batch submission completed",
		logger.Int("totalItems", out.Summary.TotalItems),
		logger.Int("succeeded", out.Summary.Succeeded),
		logger.Int("failed", out.Summary.Failed),
		logger.Float64("recoveryRate", out.Summary.RecoveryRate))
	return nil
}

package loadgen

import "time"

// Config holds configuration for the validation load test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumPayloads int           // Number of payloads to generate
	BatchSize   int           // Size of the batch submitted to /validate/batch
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Shape classifies how a generated payload is expected to be handled.
type Shape string

// Payload shapes covered by the generator.
const (
	ShapeClean         Shape = "clean"      // valid as-is, no recovery expected
	ShapeFenced        Shape = "fenced"     // valid JSON inside a code fence
	ShapeTrailingComma Shape = "trailing"   // valid JSON with a trailing comma
	ShapeMissingFields Shape = "missing"    // object missing required fields
	ShapeProse         Shape = "prose"      // free text, only fallback can save it
)

// Payload is one generated validation request.
type Payload struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Body  string `json:"payload"`
	Shape Shape  `json:"shape"`
}

// validateRequest mirrors the wire schema for POST /validate.
type validateRequest struct {
	Payload   string `json:"payload"`
	Kind      string `json:"kind"`
	SessionID string `json:"sessionId,omitempty"`
}

// batchRequest mirrors the wire schema for POST /validate/batch.
type batchRequest struct {
	Items []batchRequestItem `json:"items"`
	Kind  string             `json:"kind"`
}

type batchRequestItem struct {
	ID      string `json:"id"`
	Payload string `json:"payload"`
}

// resultResponse mirrors the single-validation response shape.
type resultResponse struct {
	ID       string `json:"id,omitempty"`
	Success  bool   `json:"success"`
	Metadata struct {
		RecoveryUsed bool `json:"recoveryUsed"`
		RetryCount   int  `json:"retryCount"`
	} `json:"metadata"`
}

// batchResponse mirrors the batch-validation response shape.
type batchResponse struct {
	Results []resultResponse `json:"results"`
	Summary struct {
		TotalItems   int     `json:"totalItems"`
		Succeeded    int     `json:"succeeded"`
		Failed       int     `json:"failed"`
		RecoveryRate float64 `json:"recoveryRate"`
	} `json:"summary"`
}

// Stats holds load test statistics
type Stats struct {
	PayloadsGenerated  int
	PayloadsSubmitted  int
	PayloadsSuccessful int
	PayloadsRecovered  int
	PayloadsFailed     int
	ShapeMismatches    int
	BatchItems         int
	BatchSucceeded     int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}

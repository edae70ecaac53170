// Package service provides the enhanced validation facade that external
// collaborators call.
package service

// Metadata describes how a result was produced.
type Metadata struct {
	ProcessingMS      float64 `json:"processingTimeMs"`
	RetryCount        int     `json:"retryCount"`
	UsedCache         bool    `json:"usedCache"`
	RecoveryUsed      bool    `json:"recoveryUsed"`
	ValidationVersion string  `json:"validationVersion"`
}

// Result is the enhanced outcome of validating one payload. Data holds the
// typed record on success; Errors carries the violation chain on failure.
type Result struct {
	ID       string   `json:"id,omitempty"`
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Metadata Metadata `json:"metadata"`
}

// BatchItem is one entry of a batch validation request. ID is echoed back
// on the corresponding result so callers can re-associate entries
// regardless of completion order.
type BatchItem struct {
	Raw string
	ID  string
}

// BatchOptions tune one ValidateBatch call. Zero values take the service
// defaults.
type BatchOptions struct {
	// Concurrency bounds how many items run at once. Negative values are a
	// configuration error.
	Concurrency int
	// BatchSizeHint tags performance samples; defaults to the item count.
	BatchSizeHint int
}

// Summary aggregates one batch run.
type Summary struct {
	TotalItems        int     `json:"totalItems"`
	Succeeded         int     `json:"succeeded"`
	Failed            int     `json:"failed"`
	TotalProcessingMS float64 `json:"totalProcessingTimeMs"`
	AvgProcessingMS   float64 `json:"avgProcessingTimeMs"`
	// RecoveryRate is the fraction of items that needed recovery.
	RecoveryRate float64 `json:"recoveryRate"`
}

// BatchResult pairs per-item results, in input order, with the batch
// summary.
type BatchResult struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

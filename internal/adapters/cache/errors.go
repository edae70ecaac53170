package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrCompileFailed = errors.New("validator compile failed")
)

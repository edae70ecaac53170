package service

import "errors"

// Sentinel kinds for facade errors.
var (
	ErrNotStarted     = errors.New("validation service not started")
	ErrInvalidOptions = errors.New("invalid batch options")
)

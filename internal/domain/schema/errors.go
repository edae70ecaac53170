package schema

import "errors"

// Sentinel kinds for schema errors.
var (
	ErrUnknownKind = errors.New("no schema for record kind")
)

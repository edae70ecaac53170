package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownKind = errors.New("unknown record kind")
)

// ParseKind converts a wire string into a RecordKind.
func ParseKind(s string) (RecordKind, error) {
	k := RecordKind(s)
	if !k.Valid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

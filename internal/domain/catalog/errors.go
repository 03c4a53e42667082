package catalog

import "errors"

// Errors returned by repositories after translating store specific failures.
var (
	ErrNotFound         = errors.New("catalog: record not found")
	ErrConflict         = errors.New("catalog: unique constraint violated")
	ErrInvalidReference = errors.New("catalog: referenced record does not exist")
)

// ErrInvalidPosition is returned for a requested seq_no below 1.
var ErrInvalidPosition = errors.New("catalog: seq_no must be a positive integer")

package eliasfano

import (
	"errors"
	"fmt"
)

// Sentinel errors. Construction failures wrap one of these in a
// *ConstructionError carrying the offending index/value; query-time
// bounds violations on the checked accessors return ErrOutOfBounds
// directly.
var (
	ErrOutOfOrder         = errors.New("eliasfano: value out of order")
	ErrOutOfRange         = errors.New("eliasfano: value at or above the declared universe bound")
	ErrTruncated          = errors.New("eliasfano: source yielded fewer than n values")
	ErrOverrun            = errors.New("eliasfano: source yielded more than n values")
	ErrLowerBoundExceeded = errors.New("eliasfano: value below the declared lower bound")
	ErrOutOfBounds        = errors.New("eliasfano: index out of bounds")
)

// ConstructionError reports a construction-time failure with enough
// context (offending index and value) to diagnose a bad source sequence.
type ConstructionError struct {
	Kind  error
	Index uint64
	Value uint64
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%v (index=%d, value=%d)", e.Kind, e.Index, e.Value)
}

func (e *ConstructionError) Unwrap() error { return e.Kind }

func newConstructionError(kind error, index, value uint64) *ConstructionError {
	return &ConstructionError{Kind: kind, Index: index, Value: value}
}

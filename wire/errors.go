package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when an access would cross the end of the region.
	ErrOutOfBounds = errors.New("wire: access out of bounds")
	// ErrMalformedString is returned when a string has no 0x00 terminator before the end of the region.
	ErrMalformedString = errors.New("wire: unterminated string")
	// ErrNegativeLength is returned for negative sizes, offsets or decoded length fields.
	ErrNegativeLength = errors.New("wire: negative length")
)

// OpError describes which accessor failed and where the cursor was at the time.
// The cursor is never moved by a failed accessor.
type OpError struct {
	Op   string
	Pos  int
	Size int
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("wire: %s at %d (size %d): %v", e.Op, e.Pos, e.Size, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

package ngff

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks malformed caller input: nil or mis-sized pixel
// slices, non-positive dimensions, or invalid construction parameters.
// Test with errors.Is.
var ErrInvalidArgument = errors.New("ngff: invalid argument")

// ErrLevelOutOfRange marks a resolution level selection outside
// [0, ResolutionLevels()).
var ErrLevelOutOfRange = errors.New("ngff: resolution level out of range")

// ErrClosed marks use of a pixel buffer after Close.
var ErrClosed = errors.New("ngff: pixel buffer is closed")

// DimensionsError reports a tile request that exceeds the active
// resolution level's extents on one axis, or an out-of-range plane index.
// It indicates a caller logic error and is never retried internally.
// Test with errors.As.
type DimensionsError struct {
	Axis   string // "T", "C", "Z", "Y" or "X"
	Offset int
	Extent int // 1 for plane indices
	Size   int // the axis extent at the active level
}

func (e *DimensionsError) Error() string {
	if e.Extent == 1 {
		return fmt.Sprintf("ngff: %s index %d out of range [0, %d)", e.Axis, e.Offset, e.Size)
	}
	return fmt.Sprintf("ngff: request exceeds %s bounds: offset %d + extent %d > size %d",
		e.Axis, e.Offset, e.Extent, e.Size)
}

// StorageError reports a failed read against a level's backing array, as
// distinct from an invalid request. Test with errors.As; Unwrap exposes
// the underlying store failure.
type StorageError struct {
	Level int
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ngff: storage read at level %d: %v", e.Level, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

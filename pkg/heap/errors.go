package heap

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrAllocFailed reports that the heap could not satisfy an allocation.
	ErrAllocFailed = errors.New("alloc failed")

	// ErrStringTooLong reports a string over the configured byte length
	// ceiling. It is always returned wrapped together with ErrAllocFailed.
	ErrStringTooLong = errors.New("string too long")

	// ErrHeapClosed reports an operation on a torn-down heap.
	ErrHeapClosed = errors.New("heap closed")
)

// FatalError is returned by the checked entry points when the engine cannot
// make progress, e.g. it cannot allocate a name it needs.
type FatalError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FatalError) Unwrap() error {
	return e.Err
}

func doAssert(condition bool) {
	if !condition {
		panic("heap internal assertion failed")
	}
}

package extstr

import "errors"

var (
	// ErrBadMagic is returned when a file does not start with the pool magic.
	ErrBadMagic = errors.New("not a string pool file")

	// ErrUnsupportedVersion is returned for pool files written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported pool format version")

	// ErrCorrupt is returned when a pool file's sections are inconsistent.
	ErrCorrupt = errors.New("corrupt pool file")
)

// Package safeconv provides integer narrowing conversions for heap sizes and
// lengths. The Must* variants panic on overflow and are meant for values
// whose bounds are already guaranteed by the caller.
package safeconv

import "math"

// MaxUint32 is the maximum value for uint32 type.
const MaxUint32 = uint32(math.MaxUint32)

// IntToUint32 converts int to uint32, reporting false when v is out of range.
func IntToUint32(v int) (uint32, bool) {
	if v < 0 || uint64(v) > uint64(MaxUint32) {
		return 0, false
	}

	return uint32(v), true
}

// MustIntToUint32 converts int to uint32, panics on bounds violation.
func MustIntToUint32(v int) uint32 {
	out, ok := IntToUint32(v)
	if !ok {
		panic("safeconv: int to uint32 out of bounds")
	}

	return out
}

// MustUint64ToInt64 converts uint64 to int64, panics on overflow.
func MustUint64ToInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		panic("safeconv: uint64 to int64 overflow")
	}

	return int64(v)
}

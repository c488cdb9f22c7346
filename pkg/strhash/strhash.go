// Package strhash provides the hash service for the string table: seeded,
// deterministic 32-bit hashes of byte strings.
//
// The default algorithm is xxhash64 folded to 32 bits after a splitmix64
// finalizer round. FNV-1a is available for hosts that need a hash stable
// across xxhash versions.
package strhash

import (
	"fmt"
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
)

// Splitmix64 finalizer constants (Vigna, 2014).
const (
	mixShift1 = 30
	mixMul1   = 0xbf58476d1ce4e5b9
	mixShift2 = 27
	mixMul2   = 0x94d049bb133111eb
	mixShift3 = 31

	// foldShift folds the high half of a 64-bit hash into the low half.
	foldShift = 32
)

// Algorithm names accepted by [ByName].
const (
	AlgorithmXXHash = "xxhash"
	AlgorithmFNV    = "fnv"
)

// Hasher maps a byte string to a 32-bit hash. Implementations must be
// deterministic, free of side effects, and must not allocate on the heap
// they serve.
type Hasher func(data []byte) uint32

// Mix64 applies the splitmix64 finalizer for full-avalanche mixing.
func Mix64(v uint64) uint64 {
	v ^= v >> mixShift1
	v *= mixMul1
	v ^= v >> mixShift2
	v *= mixMul2
	v ^= v >> mixShift3

	return v
}

// Fold32 folds a 64-bit hash into 32 bits.
func Fold32(v uint64) uint32 {
	return uint32(v ^ (v >> foldShift)) //nolint:gosec // truncation is the point.
}

// XXHash returns a seeded xxhash64-based Hasher.
func XXHash(seed uint64) Hasher {
	return func(data []byte) uint32 {
		return Fold32(Mix64(xxhash.Sum64(data) ^ seed))
	}
}

// FNV returns a seeded FNV-1a based Hasher.
func FNV(seed uint64) Hasher {
	return func(data []byte) uint32 {
		h := fnv.New64a()
		_, _ = h.Write(data)

		return Fold32(Mix64(h.Sum64() ^ seed))
	}
}

// ByName returns the Hasher for a configured algorithm name.
func ByName(name string, seed uint64) (Hasher, error) {
	switch name {
	case AlgorithmXXHash, "":
		return XXHash(seed), nil
	case AlgorithmFNV:
		return FNV(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

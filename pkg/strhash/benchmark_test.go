package strhash_test

import (
	"testing"

	"github.com/Sumatoshi-tech/strtab/pkg/strhash"
)

var benchInput = []byte("Object.prototype.hasOwnProperty")

func BenchmarkXXHash(b *testing.B) {
	h := strhash.XXHash(1)

	b.SetBytes(int64(len(benchInput)))

	for range b.N {
		h(benchInput)
	}
}

func BenchmarkFNV(b *testing.B) {
	h := strhash.FNV(1)

	b.SetBytes(int64(len(benchInput)))

	for range b.N {
		h(benchInput)
	}
}

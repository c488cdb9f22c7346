package heap_test

import (
	"fmt"
	"testing"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
)

const benchKeys = 1 << 14

func benchKeySet() [][]byte {
	keys := make([][]byte, benchKeys)
	for i := range keys {
		keys[i] = fmt.Appendf(nil, "identifier_%d", i)
	}

	return keys
}

func BenchmarkIntern_Hit(b *testing.B) {
	hp, err := heap.New()
	if err != nil {
		b.Fatal(err)
	}
	defer hp.Close()

	keys := benchKeySet()
	for _, k := range keys {
		hp.Incref(hp.Intern(k))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := range b.N {
		hp.Intern(keys[i&(benchKeys-1)])
	}
}

func BenchmarkIntern_MissThenRelease(b *testing.B) {
	hp, err := heap.New()
	if err != nil {
		b.Fatal(err)
	}
	defer hp.Close()

	keys := benchKeySet()

	b.ReportAllocs()
	b.ResetTimer()

	for i := range b.N {
		ref := hp.Intern(keys[i&(benchKeys-1)])
		hp.Incref(ref)
		hp.Decref(ref)
	}
}

func BenchmarkIntern_GrowFromMinimum(b *testing.B) {
	keys := benchKeySet()

	b.ReportAllocs()

	for range b.N {
		hp, err := heap.New(heap.WithInitialSize(16), heap.WithSizeBounds(16, 1<<16))
		if err != nil {
			b.Fatal(err)
		}

		for _, k := range keys {
			hp.Intern(k)
		}

		hp.Close()
	}
}

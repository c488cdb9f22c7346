package strhash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/strtab/pkg/strhash"
)

const (
	testSeed      = 0x517cc1b727220a95
	testOtherSeed = 42

	// testDistinctInputs is the number of inputs for the spread check.
	testDistinctInputs = 4096

	// testMaxBucketShare bounds the share of inputs landing in one of 16 buckets.
	testMaxBucketShare = 0.12
)

func TestHashers_Deterministic(t *testing.T) {
	t.Parallel()

	for _, name := range []string{strhash.AlgorithmXXHash, strhash.AlgorithmFNV} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			h1, err := strhash.ByName(name, testSeed)
			require.NoError(t, err)

			h2, err := strhash.ByName(name, testSeed)
			require.NoError(t, err)

			assert.Equal(t, h1([]byte("length")), h2([]byte("length")))
			assert.NotEqual(t, h1([]byte("length")), h1([]byte("lengtH")))
		})
	}
}

func TestHashers_SeedChangesHash(t *testing.T) {
	t.Parallel()

	a := strhash.XXHash(testSeed)
	b := strhash.XXHash(testOtherSeed)

	assert.NotEqual(t, a([]byte("prototype")), b([]byte("prototype")))
}

func TestHashers_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		_ = strhash.XXHash(testSeed)(nil)
		_ = strhash.FNV(testSeed)([]byte{})
	})
}

func TestXXHash_LowBitsSpread(t *testing.T) {
	t.Parallel()

	hasher := strhash.XXHash(testSeed)

	var buckets [16]int

	for i := range testDistinctInputs {
		buf := []byte{byte(i), byte(i >> 8), 'k'}
		buckets[hasher(buf)&15]++
	}

	for idx, n := range buckets {
		assert.Less(t, float64(n)/testDistinctInputs, testMaxBucketShare, "bucket %d overloaded", idx)
	}
}

func TestByName_Unknown(t *testing.T) {
	t.Parallel()

	_, err := strhash.ByName("murmur", 0)
	require.ErrorIs(t, err, strhash.ErrUnknownAlgorithm)
}

func TestByName_EmptyDefaultsToXXHash(t *testing.T) {
	t.Parallel()

	h, err := strhash.ByName("", testSeed)
	require.NoError(t, err)
	assert.Equal(t, strhash.XXHash(testSeed)([]byte("x")), h([]byte("x")))
}

func TestFold32(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(0), strhash.Fold32(0))
	assert.Equal(t, uint32(1), strhash.Fold32(1<<32))
	assert.Equal(t, uint32(0), strhash.Fold32(0x0000_0001_0000_0001))
}

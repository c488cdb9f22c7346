package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/strtab/pkg/config"
	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/strhash"
)

func validConfig() config.Config {
	return config.Config{
		Table: config.TableConfig{
			InitialSize:   testInitialSize,
			MinSize:       testMinSize,
			MaxSize:       testMaxSize,
			CheckInterval: testCheckInterval,
			GrowLoad:      testGrowLoad,
			ShrinkLoad:    testShrinkLoad,
		},
		Strings: config.StringsConfig{MaxByteLength: testMaxByteLength},
		Heap:    config.HeapConfig{MemoryLimit: "1 MiB", GCInterval: testGCInterval},
		Hash:    config.HashConfig{Algorithm: strhash.AlgorithmXXHash, Seed: testSeed},
		Logging: config.LoggingConfig{Level: "warn"},
	}
}

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"initial not pow2", func(c *config.Config) { c.Table.InitialSize = 100 }, config.ErrInvalidTableSize},
		{"zero min", func(c *config.Config) { c.Table.MinSize = 0 }, config.ErrInvalidTableSize},
		{"min above max", func(c *config.Config) { c.Table.MinSize = 8192 }, config.ErrInvalidSizeBounds},
		{"initial below min", func(c *config.Config) { c.Table.InitialSize = 8 }, config.ErrInvalidSizeBounds},
		{"check interval", func(c *config.Config) { c.Table.CheckInterval = 3 }, config.ErrInvalidCheckInterval},
		{"loads", func(c *config.Config) { c.Table.ShrinkLoad = c.Table.GrowLoad }, config.ErrInvalidLoadFactors},
		{"negative shrink", func(c *config.Config) { c.Table.ShrinkLoad = -1 }, config.ErrInvalidLoadFactors},
		{"byte length", func(c *config.Config) { c.Strings.MaxByteLength = 0 }, config.ErrInvalidByteLength},
		{"memory limit", func(c *config.Config) { c.Heap.MemoryLimit = "lots" }, config.ErrInvalidMemoryLimit},
		{"gc interval", func(c *config.Config) { c.Heap.GCInterval = -1 }, config.ErrInvalidGCInterval},
		{"hash", func(c *config.Config) { c.Hash.Algorithm = "md5" }, strhash.ErrUnknownAlgorithm},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, config.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestMemoryLimitBytes(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]int64{
		"":      0,
		"0":     0,
		"1 MiB": 1 << 20,
		"2MB":   2_000_000,
	} {
		got, err := config.HeapConfig{MemoryLimit: in}.MemoryLimitBytes()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestSlogLevel(t *testing.T) {
	t.Parallel()

	level, err := config.LoggingConfig{Level: "debug"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestHeapOptions_BuildHeap(t *testing.T) {
	t.Parallel()

	cfg := validConfig()

	opts, err := cfg.HeapOptions()
	require.NoError(t, err)

	hp, err := heap.New(opts...)
	require.NoError(t, err)

	defer hp.Close()

	st := hp.Stats()
	assert.Equal(t, testInitialSize, st.Buckets)
	assert.Equal(t, int64(1<<20), st.MemoryLimit)

	long := make([]byte, testMaxByteLength+1)
	_, err = hp.InternChecked(long)
	require.ErrorIs(t, err, heap.ErrStringTooLong)
}

func TestHeapOptions_UnknownHash(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Hash.Algorithm = "crc"

	_, err := cfg.HeapOptions()
	require.ErrorIs(t, err, strhash.ErrUnknownAlgorithm)
}

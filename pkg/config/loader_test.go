package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/strtab/pkg/config"
)

const (
	testInitialSize   = 64
	testMinSize       = 16
	testMaxSize       = 4096
	testCheckInterval = 32
	testGrowLoad      = 4
	testShrinkLoad    = 1
	testMaxByteLength = 0xffff
	testGCInterval    = 1000
	testSeed          = 42
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".strtab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultInitialSize, cfg.Table.InitialSize)
	assert.Equal(t, config.DefaultMinSize, cfg.Table.MinSize)
	assert.Equal(t, config.DefaultMaxSize, cfg.Table.MaxSize)
	assert.Equal(t, config.DefaultCheckInterval, cfg.Table.CheckInterval)
	assert.Equal(t, config.DefaultGrowLoad, cfg.Table.GrowLoad)
	assert.Equal(t, config.DefaultShrinkLoad, cfg.Table.ShrinkLoad)
	assert.Equal(t, uint32(config.DefaultMaxByteLength), cfg.Strings.MaxByteLength)
	assert.Equal(t, config.DefaultMemoryLimit, cfg.Heap.MemoryLimit)
	assert.Equal(t, config.DefaultGCInterval, cfg.Heap.GCInterval)
	assert.Equal(t, config.DefaultHashAlgorithm, cfg.Hash.Algorithm)
	assert.Equal(t, config.DefaultHashSeed, cfg.Hash.Seed)
	assert.Equal(t, config.DefaultLogLevel, cfg.Logging.Level)
	assert.Equal(t, config.DefaultLogJSON, cfg.Logging.JSON)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestLoadConfig_ValidFile_Unmarshals(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `table:
  initial_size: 64
  min_size: 16
  max_size: 4096
  check_interval: 32
  grow_load: 4
  shrink_load: 1
strings:
  max_byte_length: 65535
heap:
  memory_limit: 64MiB
  gc_interval: 1000
hash:
  algorithm: fnv
  seed: 42
logging:
  level: debug
  json: true
telemetry:
  otlp_endpoint: "localhost:4317"
  otlp_insecure: true
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, testInitialSize, cfg.Table.InitialSize)
	assert.Equal(t, testMinSize, cfg.Table.MinSize)
	assert.Equal(t, testMaxSize, cfg.Table.MaxSize)
	assert.Equal(t, testCheckInterval, cfg.Table.CheckInterval)
	assert.Equal(t, testGrowLoad, cfg.Table.GrowLoad)
	assert.Equal(t, testShrinkLoad, cfg.Table.ShrinkLoad)
	assert.Equal(t, uint32(testMaxByteLength), cfg.Strings.MaxByteLength)
	assert.Equal(t, testGCInterval, cfg.Heap.GCInterval)
	assert.Equal(t, "fnv", cfg.Hash.Algorithm)
	assert.Equal(t, uint64(testSeed), cfg.Hash.Seed)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.OTLPInsecure)

	limit, err := cfg.Heap.MemoryLimitBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(64<<20), limit)
}

func TestLoadConfig_InvalidFile_Rejected(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "table:\n  initial_size: 100\n"))
	require.ErrorIs(t, err, config.ErrInvalidTableSize)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "table: [unterminated"))
	require.Error(t, err)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STRTAB_HASH_ALGORITHM", "fnv")
	t.Setenv("STRTAB_HEAP_MEMORY_LIMIT", "1MiB")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "fnv", cfg.Hash.Algorithm)
	assert.Equal(t, "1MiB", cfg.Heap.MemoryLimit)
}

// Package config provides configuration loading and validation for strtab.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/safeconv"
	"github.com/Sumatoshi-tech/strtab/pkg/strhash"
)

// Sentinel validation errors.
var (
	ErrInvalidTableSize     = errors.New("table size must be a positive power of two")
	ErrInvalidSizeBounds    = errors.New("table size bounds out of order")
	ErrInvalidCheckInterval = errors.New("check interval must be a positive power of two")
	ErrInvalidLoadFactors   = errors.New("shrink load must be below grow load")
	ErrInvalidByteLength    = errors.New("max byte length must be positive")
	ErrInvalidMemoryLimit   = errors.New("invalid memory limit")
	ErrInvalidGCInterval    = errors.New("gc interval must not be negative")
	ErrInvalidLogLevel      = errors.New("invalid log level")
)

// Config holds all configuration for strtab.
type Config struct {
	Table     TableConfig     `mapstructure:"table"`
	Strings   StringsConfig   `mapstructure:"strings"`
	Heap      HeapConfig      `mapstructure:"heap"`
	Hash      HashConfig      `mapstructure:"hash"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TableConfig holds the bucket table sizing policy.
type TableConfig struct {
	InitialSize   int `mapstructure:"initial_size"`
	MinSize       int `mapstructure:"min_size"`
	MaxSize       int `mapstructure:"max_size"`
	CheckInterval int `mapstructure:"check_interval"`
	GrowLoad      int `mapstructure:"grow_load"`
	ShrinkLoad    int `mapstructure:"shrink_load"`
}

// StringsConfig holds per-string limits.
type StringsConfig struct {
	MaxByteLength uint32 `mapstructure:"max_byte_length"`
}

// HeapConfig holds allocator settings.
type HeapConfig struct {
	// MemoryLimit is a humanized size such as "64MiB". Empty or "0" means unlimited.
	MemoryLimit string `mapstructure:"memory_limit"`
	GCInterval  int    `mapstructure:"gc_interval"`
}

// HashConfig selects the string hash.
type HashConfig struct {
	Algorithm string `mapstructure:"algorithm"`
	Seed      uint64 `mapstructure:"seed"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
}

// Validate checks the configuration for values the heap would reject or
// silently clamp.
func (c *Config) Validate() error {
	t := c.Table

	for _, n := range []int{t.InitialSize, t.MinSize, t.MaxSize} {
		if !isPow2(n) {
			return fmt.Errorf("%w: %d", ErrInvalidTableSize, n)
		}
	}

	if t.MinSize > t.MaxSize || t.InitialSize < t.MinSize || t.InitialSize > t.MaxSize {
		return fmt.Errorf("%w: %d <= %d <= %d", ErrInvalidSizeBounds, t.MinSize, t.InitialSize, t.MaxSize)
	}

	if !isPow2(t.CheckInterval) {
		return fmt.Errorf("%w: %d", ErrInvalidCheckInterval, t.CheckInterval)
	}

	if t.ShrinkLoad < 0 || t.ShrinkLoad >= t.GrowLoad {
		return fmt.Errorf("%w: grow %d, shrink %d", ErrInvalidLoadFactors, t.GrowLoad, t.ShrinkLoad)
	}

	if c.Strings.MaxByteLength == 0 {
		return ErrInvalidByteLength
	}

	_, err := c.Heap.MemoryLimitBytes()
	if err != nil {
		return err
	}

	if c.Heap.GCInterval < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGCInterval, c.Heap.GCInterval)
	}

	_, err = strhash.ByName(c.Hash.Algorithm, c.Hash.Seed)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	_, err = c.Logging.SlogLevel()
	if err != nil {
		return err
	}

	return nil
}

// MemoryLimitBytes parses MemoryLimit. Zero means unlimited.
func (h HeapConfig) MemoryLimitBytes() (int64, error) {
	if strings.TrimSpace(h.MemoryLimit) == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(h.MemoryLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMemoryLimit, h.MemoryLimit, err)
	}

	if n > uint64(1)<<62 {
		return 0, fmt.Errorf("%w: %q too large", ErrInvalidMemoryLimit, h.MemoryLimit)
	}

	return safeconv.MustUint64ToInt64(n), nil
}

// SlogLevel parses Level into a slog level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// HeapOptions converts the configuration into heap options. The config is
// expected to be valid.
func (c *Config) HeapOptions() ([]heap.Option, error) {
	hasher, err := strhash.ByName(c.Hash.Algorithm, c.Hash.Seed)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}

	limit, err := c.Heap.MemoryLimitBytes()
	if err != nil {
		return nil, err
	}

	opts := []heap.Option{
		heap.WithInitialSize(c.Table.InitialSize),
		heap.WithSizeBounds(c.Table.MinSize, c.Table.MaxSize),
		heap.WithCheckInterval(c.Table.CheckInterval),
		heap.WithLoadFactors(c.Table.GrowLoad, c.Table.ShrinkLoad),
		heap.WithMaxByteLength(c.Strings.MaxByteLength),
		heap.WithHasher(hasher),
	}

	if limit > 0 {
		opts = append(opts, heap.WithMemoryLimit(limit))
	}

	if c.Heap.GCInterval > 0 {
		opts = append(opts, heap.WithGCInterval(c.Heap.GCInterval))
	}

	return opts, nil
}

func isPow2(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}

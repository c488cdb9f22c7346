package config

import (
	"github.com/Sumatoshi-tech/strtab/pkg/heap"
	"github.com/Sumatoshi-tech/strtab/pkg/strhash"
)

// Table defaults.
const (
	DefaultInitialSize   = heap.DefaultInitialSize
	DefaultMinSize       = heap.DefaultMinSize
	DefaultMaxSize       = heap.DefaultMaxSize
	DefaultCheckInterval = heap.DefaultCheckInterval
	DefaultGrowLoad      = heap.DefaultGrowLoad
	DefaultShrinkLoad    = heap.DefaultShrinkLoad
)

// String defaults.
const (
	DefaultMaxByteLength = heap.DefaultMaxByteLength
)

// Heap defaults.
const (
	DefaultMemoryLimit = "0"
	DefaultGCInterval  = 0
)

// Hash defaults.
const (
	DefaultHashAlgorithm = strhash.AlgorithmXXHash
	DefaultHashSeed      = uint64(heap.DefaultHashSeed)
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Telemetry defaults.
const (
	DefaultOTLPEndpoint = ""
	DefaultOTLPInsecure = false
)

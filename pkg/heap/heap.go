// Package heap implements the string-interning subsystem of a language
// runtime heap: a chained hash table of immutable strings, each stored at
// most once and shared by reference.
//
// A freshly interned string is linked into the table but has a zero
// reference count. The caller must Incref it before the next operation that
// may allocate, or a collection triggered by that allocation may sweep it.
//
// The heap is single-threaded. The hazard it guards against is reentrancy:
// an allocation can run the collector, which can resize the table, run
// finalizers or compact objects. Interning suppresses those side effects
// for the duration of the creation sequence (see [Heap.PreventSideEffects]).
package heap

import (
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/Sumatoshi-tech/strtab/pkg/strhash"
)

// Default configuration values.
const (
	DefaultInitialSize   = 1024
	DefaultMinSize       = 256
	DefaultMaxSize       = 1 << 24
	DefaultCheckInterval = 256
	DefaultGrowLoad      = 2
	DefaultShrinkLoad    = 0

	// DefaultMaxByteLength fits a 31-bit length field.
	DefaultMaxByteLength = 0x7fffffff

	// DefaultHashSeed seeds the default hasher.
	DefaultHashSeed = 0x517cc1b727220a95

	minTableSize = 2
)

// ExternalDataProvider lets the host supply externally owned storage for
// content it already holds. Provide returns a buffer equal to data that
// outlives every string referencing it, or nil to request inline storage.
type ExternalDataProvider interface {
	Provide(data []byte) []byte
}

// AllocHook observes every heap allocation before it is attempted.
type AllocHook func(hp *Heap, size int)

// CompactionHook is invoked by unsuppressed collections to compact host objects.
type CompactionHook func(hp *Heap)

// Finalizer is a one-shot callback run by an unsuppressed collection.
type Finalizer func(hp *Heap)

// Option configures a Heap.
type Option func(*Heap)

// WithInitialSize sets the initial bucket count (rounded up to a power of two).
func WithInitialSize(n int) Option {
	return func(hp *Heap) { hp.policy.initialSize = n }
}

// WithSizeBounds sets the bucket count range the resize policy stays within.
func WithSizeBounds(minSize, maxSize int) Option {
	return func(hp *Heap) {
		hp.policy.minSize = minSize
		hp.policy.maxSize = maxSize
	}
}

// WithCheckInterval sets how many insertions pass between resize checks
// (rounded up to a power of two).
func WithCheckInterval(n int) Option {
	return func(hp *Heap) { hp.policy.checkInterval = n }
}

// WithLoadFactors sets the entries-per-bucket thresholds: grow at or above
// grow, shrink at or below shrink.
func WithLoadFactors(grow, shrink int) Option {
	return func(hp *Heap) {
		hp.policy.growLoad = grow
		hp.policy.shrinkLoad = shrink
	}
}

// WithMaxByteLength sets the string byte length ceiling.
func WithMaxByteLength(n uint32) Option {
	return func(hp *Heap) { hp.maxByteLen = n }
}

// WithMemoryLimit bounds accounted heap bytes. Zero means unlimited.
func WithMemoryLimit(limit int64) Option {
	return func(hp *Heap) { hp.limit = limit }
}

// WithGCInterval runs a voluntary collection every n allocations. Zero disables it.
func WithGCInterval(n int) Option {
	return func(hp *Heap) { hp.gcInterval = n }
}

// WithHasher replaces the hash service.
func WithHasher(h strhash.Hasher) Option {
	return func(hp *Heap) { hp.hasher = h }
}

// WithExternalData installs an external-data provider.
func WithExternalData(p ExternalDataProvider) Option {
	return func(hp *Heap) { hp.external = p }
}

// WithAllocHook installs an allocation observer.
func WithAllocHook(fn AllocHook) Option {
	return func(hp *Heap) { hp.allocHook = fn }
}

// WithCompactionHook installs the object compaction callback.
func WithCompactionHook(fn CompactionHook) Option {
	return func(hp *Heap) { hp.compactionHook = fn }
}

// WithLogger sets the logger. Debug level traces table activity.
func WithLogger(l *slog.Logger) Option {
	return func(hp *Heap) { hp.logger = l }
}

// resizePolicy holds the string table sizing parameters.
type resizePolicy struct {
	initialSize   int
	minSize       int
	maxSize       int
	checkInterval int
	growLoad      int
	shrinkLoad    int
}

// Heap owns the string table, the object arena and the collector state.
type Heap struct {
	objects arena
	strtab  stringTable
	policy  resizePolicy

	hasher         strhash.Hasher
	external       ExternalDataProvider
	allocHook      AllocHook
	compactionHook CompactionHook
	logger         *slog.Logger
	finalizers     []Finalizer

	limit      int64
	used       int64
	gcInterval int
	allocCount int
	maxByteLen uint32

	flags      MSFlags
	collecting bool
	resizing   bool
	closed     bool

	// Maintenance deferred by a suppressed region.
	resizePending     bool
	finalizersPending bool
	compactionPending bool

	counters counters
}

// New creates a heap with an allocated, empty string table.
func New(opts ...Option) (*Heap, error) {
	hp := &Heap{
		objects: newArena(),
		policy: resizePolicy{
			initialSize:   DefaultInitialSize,
			minSize:       DefaultMinSize,
			maxSize:       DefaultMaxSize,
			checkInterval: DefaultCheckInterval,
			growLoad:      DefaultGrowLoad,
			shrinkLoad:    DefaultShrinkLoad,
		},
		hasher:     strhash.XXHash(DefaultHashSeed),
		logger:     slog.New(slog.DiscardHandler),
		maxByteLen: DefaultMaxByteLength,
	}

	for _, opt := range opts {
		opt(hp)
	}

	hp.policy.normalize()

	err := hp.strtab.init(hp, hp.policy.initialSize)
	if err != nil {
		hp.strtab.teardown(hp)

		return nil, fmt.Errorf("init string table: %w", err)
	}

	return hp, nil
}

func (p *resizePolicy) normalize() {
	p.minSize = roundUpPow2(max(p.minSize, minTableSize))
	p.maxSize = roundUpPow2(max(p.maxSize, p.minSize))
	p.initialSize = min(max(roundUpPow2(p.initialSize), p.minSize), p.maxSize)
	p.checkInterval = roundUpPow2(max(p.checkInterval, 1))
	p.growLoad = max(p.growLoad, 1)
	p.shrinkLoad = min(max(p.shrinkLoad, 0), p.growLoad-1)
}

func roundUpPow2(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}

// Get returns the string behind ref. It panics if ref is nil or stale: using
// a handle after its string was freed is a programming error.
func (hp *Heap) Get(ref Ref) *HString {
	s := hp.objects.resolve(ref)
	doAssert(s != nil)

	return s
}

// Lookup returns the string behind ref, or false if ref is nil or stale.
func (hp *Heap) Lookup(ref Ref) (*HString, bool) {
	s := hp.objects.resolve(ref)

	return s, s != nil
}

// Len returns the number of strings in the table.
func (hp *Heap) Len() int {
	return hp.strtab.count
}

// BytesInUse returns the accounted heap bytes.
func (hp *Heap) BytesInUse() int64 {
	return hp.used
}

// Close tears down the string table, freeing every string. Closing twice is a no-op.
func (hp *Heap) Close() {
	if hp.closed {
		return
	}

	freed := hp.strtab.teardown(hp)
	hp.closed = true

	hp.logger.Debug("heap closed", "freed", freed, "bytes_in_use", hp.used)
}

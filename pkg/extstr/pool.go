// Package extstr provides an external-data provider for the string heap: an
// immutable pool of known strings kept in one contiguous blob. Interned
// strings whose content is in the pool reference the blob instead of owning
// a copy. Pools are persisted LZ4-compressed through an afero filesystem.
package extstr

import (
	"sort"

	"github.com/Sumatoshi-tech/strtab/pkg/safeconv"
)

// span locates one pool entry inside the blob.
type span struct {
	off uint32
	len uint32
}

// Pool is an immutable set of strings backed by a single blob. The zero Pool
// is empty and provides nothing.
type Pool struct {
	blob  []byte
	spans []span
	index map[string]int
}

// NewPool builds a pool from strs. Duplicates and empty strings are dropped;
// entries are stored in sorted order so identical inputs produce identical
// blobs.
func NewPool(strs []string) *Pool {
	uniq := make([]string, 0, len(strs))
	seen := make(map[string]struct{}, len(strs))

	for _, s := range strs {
		if s == "" {
			continue
		}

		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		uniq = append(uniq, s)
	}

	sort.Strings(uniq)

	total := 0
	for _, s := range uniq {
		total += len(s)
	}

	blob := make([]byte, 0, total)
	lengths := make([]uint32, len(uniq))

	for i, s := range uniq {
		blob = append(blob, s...)
		lengths[i] = safeconv.MustIntToUint32(len(s))
	}

	return fromParts(blob, lengths)
}

// fromParts indexes blob given the byte length of each consecutive entry.
// The caller guarantees the lengths sum to len(blob).
func fromParts(blob []byte, lengths []uint32) *Pool {
	p := &Pool{
		blob:  blob,
		spans: make([]span, len(lengths)),
		index: make(map[string]int, len(lengths)),
	}

	var off uint32

	for i, n := range lengths {
		p.spans[i] = span{off: off, len: n}
		p.index[string(blob[off:off+n])] = i
		off += n
	}

	return p
}

// Provide returns the pool's copy of data, or nil when data is not pooled.
// The returned slice aliases the blob and must not be modified.
func (p *Pool) Provide(data []byte) []byte {
	if p == nil || len(data) == 0 {
		return nil
	}

	i, ok := p.index[string(data)]
	if !ok {
		return nil
	}

	sp := p.spans[i]

	return p.blob[sp.off : sp.off+sp.len : sp.off+sp.len]
}

// Contains reports whether s is pooled.
func (p *Pool) Contains(s string) bool {
	if p == nil {
		return false
	}

	_, ok := p.index[s]

	return ok
}

// Len returns the number of pooled strings.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}

	return len(p.spans)
}

// Size returns the blob size in bytes.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}

	return len(p.blob)
}

// Strings returns the pooled strings in storage order.
func (p *Pool) Strings() []string {
	if p == nil {
		return nil
	}

	out := make([]string, len(p.spans))
	for i, sp := range p.spans {
		out[i] = string(p.blob[sp.off : sp.off+sp.len])
	}

	return out
}

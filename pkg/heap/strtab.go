package heap

import (
	"bytes"
	"fmt"

	"github.com/Sumatoshi-tech/strtab/pkg/safeconv"
)

// stringTable is a power-of-two array of bucket heads. Each bucket is an
// intrusive doubly linked chain threaded through HString.prev/next.
type stringTable struct {
	buckets []uint32
	mask    uint32
	count   int

	// mods counts links, so an intern sequence can detect strings linked
	// by nested operations while it was allocating.
	mods uint64
}

func (t *stringTable) init(hp *Heap, size int) error {
	err := hp.alloc(size * bucketSlotSize)
	if err != nil {
		return err
	}

	t.buckets = make([]uint32, size)
	t.mask = safeconv.MustIntToUint32(size - 1)

	return nil
}

func (t *stringTable) size() int {
	return len(t.buckets)
}

// find walks the chain for hash and returns the string with equal content.
func (t *stringTable) find(hp *Heap, data []byte, hash uint32) (Ref, bool) {
	idx := t.buckets[hash&t.mask]

	for idx != 0 {
		s := hp.objects.slot(idx)
		if s.hash == hash && int(s.blen) == len(data) && bytes.Equal(s.data.bytes(), data) {
			return Ref{index: idx, gen: s.gen}, true
		}

		idx = s.next
	}

	return Ref{}, false
}

// link inserts an unlinked string at the head of its bucket.
func (t *stringTable) link(hp *Heap, idx uint32) {
	s := hp.objects.slot(idx)
	doAssert(!s.linked && s.prev == 0 && s.next == 0)

	slot := &t.buckets[s.hash&t.mask]
	if head := *slot; head != 0 {
		other := hp.objects.slot(head)
		doAssert(other.prev == 0)

		s.next = head
		other.prev = idx
	}

	*slot = idx
	s.linked = true
	t.count++
	t.mods++
}

// unlink removes a string from its chain in O(1). When the string heads its
// bucket the slot is found through the cached hash.
func (t *stringTable) unlink(hp *Heap, idx uint32) {
	s := hp.objects.slot(idx)
	doAssert(s.linked)

	if s.prev == 0 {
		slot := &t.buckets[s.hash&t.mask]
		doAssert(*slot == idx)

		*slot = s.next
	} else {
		hp.objects.slot(s.prev).next = s.next
	}

	if s.next != 0 {
		hp.objects.slot(s.next).prev = s.prev
	}

	s.prev, s.next = 0, 0
	s.linked = false
	t.count--
}

// targetSize applies the resize policy to the current load.
func (t *stringTable) targetSize(p resizePolicy) int {
	size := t.size()
	perChain := t.count / size

	switch {
	case perChain >= p.growLoad && size < p.maxSize:
		return size * 2
	case perChain <= p.shrinkLoad && size > p.minSize:
		return size / 2
	default:
		return size
	}
}

// rehash moves every string into a new bucket array of newSize. The caller
// must hold a suppressed region it entered itself. On allocation failure the
// old table is kept intact.
func (t *stringTable) rehash(hp *Heap, newSize int) error {
	doAssert(!hp.resizing && hp.flags&MSNoStringtableResize != 0)

	hp.resizing = true
	defer func() { hp.resizing = false }()

	oldSize := t.size()

	err := hp.alloc(newSize * bucketSlotSize)
	if err != nil {
		return fmt.Errorf("resize string table %d -> %d: %w", oldSize, newSize, err)
	}

	// The allocation may have swept strings; walk what is left.
	old := t.buckets
	t.buckets = make([]uint32, newSize)
	t.mask = safeconv.MustIntToUint32(newSize - 1)

	for _, head := range old {
		idx := head
		for idx != 0 {
			s := hp.objects.slot(idx)
			next := s.next

			slot := &t.buckets[s.hash&t.mask]
			s.prev = 0
			s.next = *slot

			if *slot != 0 {
				hp.objects.slot(*slot).prev = idx
			}

			*slot = idx
			idx = next
		}
	}

	hp.release(oldSize * bucketSlotSize)
	hp.counters.resizes++

	hp.logger.Debug("string table resized", "from", oldSize, "to", newSize, "count", t.count)

	return nil
}

// teardown frees every linked string without keeping chains consistent.
// A table that was never allocated is left alone.
func (t *stringTable) teardown(hp *Heap) int {
	if t.buckets == nil {
		return 0
	}

	freed := 0

	for i, head := range t.buckets {
		idx := head
		for idx != 0 {
			s := hp.objects.slot(idx)
			next := s.next

			s.linked = false
			hp.freeObject(idx)
			freed++

			idx = next
		}

		t.buckets[i] = 0
	}

	hp.release(t.size() * bucketSlotSize)

	t.buckets = nil
	t.mask = 0
	t.count = 0

	return freed
}

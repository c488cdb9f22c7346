package heap

import "math"

// Arena pages hold a fixed number of objects and are never reallocated, so a
// *HString stays valid for as long as its slot is allocated.
const (
	pageShift = 8
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1

	// maxObjectIndex is reserved, mirroring index 0 for the nil handle.
	maxObjectIndex = math.MaxUint32
)

// Ref is a generation-checked handle to a heap string. The zero Ref is nil.
// A Ref to a freed string never resolves to the object that reuses its slot.
type Ref struct {
	index uint32
	gen   uint32
}

// IsNil reports whether r is the nil handle.
func (r Ref) IsNil() bool {
	return r.index == 0
}

// Index returns the arena slot of r.
func (r Ref) Index() uint32 {
	return r.index
}

// Generation returns the slot generation r was issued for.
func (r Ref) Generation() uint32 {
	return r.gen
}

// arena is the object allocator. Slot 0 is reserved so that 0 can act as
// the null link in bucket chains.
type arena struct {
	pages [][]HString
	gaps  []uint32
	next  uint32
	live  int
}

func newArena() arena {
	return arena{next: 1}
}

func (a *arena) slot(idx uint32) *HString {
	return &a.pages[idx>>pageShift][idx&pageMask]
}

// malloc returns a free slot, or false if the index space is exhausted.
func (a *arena) malloc() (uint32, bool) {
	if n := len(a.gaps); n > 0 {
		idx := a.gaps[n-1]
		a.gaps = a.gaps[:n-1]
		a.live++

		return idx, true
	}

	if a.next == maxObjectIndex {
		return 0, false
	}

	if int(a.next>>pageShift) == len(a.pages) {
		a.pages = append(a.pages, make([]HString, pageSize))
	}

	idx := a.next
	a.next++
	a.live++

	return idx, true
}

// free clears the slot and bumps its generation.
func (a *arena) free(idx uint32) {
	doAssert(idx != 0 && idx < a.next)

	s := a.slot(idx)
	doAssert(s.data != nil)

	*s = HString{gen: s.gen + 1}
	a.gaps = append(a.gaps, idx)
	a.live--
}

// resolve returns the object behind ref, or nil if ref is nil or stale.
func (a *arena) resolve(ref Ref) *HString {
	if ref.index == 0 || ref.index >= a.next {
		return nil
	}

	s := a.slot(ref.index)
	if s.data == nil || s.gen != ref.gen {
		return nil
	}

	return s
}

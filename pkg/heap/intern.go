package heap

import "strconv"

// maxUint32Digits is the decimal length of the largest uint32.
const maxUint32Digits = 10

const decimalBase = 10

// Intern returns the canonical string for data, creating it on a miss.
// It returns the nil Ref if the string cannot be allocated.
//
// A new string is returned linked but with a zero reference count: the
// caller must Incref it before the next operation that may allocate.
func (hp *Heap) Intern(data []byte) Ref {
	ref, _ := hp.intern(data)

	return ref
}

// InternString is Intern for Go strings.
func (hp *Heap) InternString(s string) Ref {
	return hp.Intern([]byte(s))
}

// InternUint32 interns the canonical decimal form of v.
func (hp *Heap) InternUint32(v uint32) Ref {
	var buf [maxUint32Digits]byte

	return hp.Intern(strconv.AppendUint(buf[:0], uint64(v), decimalBase))
}

// InternChecked is Intern that reports failure as a *FatalError.
func (hp *Heap) InternChecked(data []byte) (Ref, error) {
	ref, err := hp.intern(data)
	if err != nil {
		return Ref{}, &FatalError{Op: "intern", Err: err}
	}

	return ref, nil
}

// InternUint32Checked is InternUint32 that reports failure as a *FatalError.
func (hp *Heap) InternUint32Checked(v uint32) (Ref, error) {
	var buf [maxUint32Digits]byte

	ref, err := hp.intern(strconv.AppendUint(buf[:0], uint64(v), decimalBase))
	if err != nil {
		return Ref{}, &FatalError{Op: "intern uint32", Err: err}
	}

	return ref, nil
}

func (hp *Heap) intern(data []byte) (Ref, error) {
	if hp.closed {
		return Ref{}, ErrHeapClosed
	}

	hash := hp.hasher(data)

	ref, ok := hp.strtab.find(hp, data, hash)
	if ok {
		hp.counters.hits++

		return ref, nil
	}

	hp.counters.misses++

	return hp.doIntern(data, hash)
}

// doIntern creates and links a string known to be absent. Collector side
// effects are suppressed throughout: the allocation may collect, and a
// resize, finalizer or compaction running then would invalidate the table
// state and possibly data itself.
func (hp *Heap) doIntern(data []byte, hash uint32) (Ref, error) {
	// The result stays pinned until the outermost region has run its
	// deferred maintenance, which may allocate and so sweep.
	var pinned Ref

	defer func() { hp.unpin(pinned) }()

	prev := hp.suppress()
	defer hp.restore(prev)

	var ext []byte
	if hp.external != nil {
		ext = hp.external.Provide(data)
	}

	mods := hp.strtab.mods

	idx, err := hp.allocInitString(data, hash, ext)
	if err != nil {
		hp.logger.Debug("intern failed", "blen", len(data), "error", err)

		return Ref{}, err
	}

	if hp.strtab.mods != mods {
		// A nested operation interned strings while we were allocating.
		if existing, ok := hp.strtab.find(hp, data, hash); ok {
			hp.freeObject(idx)
			hp.objects.slot(existing.index).pins++
			pinned = existing

			return existing, nil
		}
	}

	hp.strtab.link(hp, idx)
	hp.counters.inserts++

	s := hp.objects.slot(idx)
	s.pins++
	ref := Ref{index: idx, gen: s.gen}
	pinned = ref

	if hp.strtab.count&(hp.policy.checkInterval-1) == 0 {
		hp.periodicResizeCheck(prev)
	}

	return ref, nil
}

// unpin drops an intern pin. The string may have been freed meanwhile by
// Close or an explicit Remove and Free, in which case ref no longer resolves.
func (hp *Heap) unpin(ref Ref) {
	s := hp.objects.resolve(ref)
	if s == nil {
		return
	}

	doAssert(s.pins > 0)
	s.pins--
}

// periodicResizeCheck runs the amortized load check. A resize is only done
// here if the region entered by this intern is the outermost one; otherwise
// it is deferred to the end of the outer region.
func (hp *Heap) periodicResizeCheck(outer MSFlags) {
	target := hp.strtab.targetSize(hp.policy)
	if target == hp.strtab.size() {
		return
	}

	if outer&MSNoStringtableResize != 0 {
		hp.deferResize()

		return
	}

	err := hp.strtab.rehash(hp, target)
	if err != nil {
		hp.logger.Debug("periodic resize skipped", "error", err)
	}
}

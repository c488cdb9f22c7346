package heap

import "fmt"

// Incref adds a reference to the string behind ref.
func (hp *Heap) Incref(ref Ref) {
	hp.Get(ref).refcount++
}

// Decref drops a reference. When the count reaches zero the string is
// removed from the table and freed, unless an intern is still returning it;
// a later sweep reclaims it then.
func (hp *Heap) Decref(ref Ref) {
	s := hp.Get(ref)
	doAssert(s.refcount > 0)

	s.refcount--
	if s.refcount > 0 || s.pins > 0 {
		return
	}

	if s.linked {
		hp.strtab.unlink(hp, ref.index)
		hp.counters.removals++
	}

	hp.freeObject(ref.index)
	hp.counters.refzeroFrees++
}

// Remove unlinks the string behind ref from its bucket without freeing it.
// Removing a string that is not linked is a programming error. The unlink
// happens immediately, even inside a suppressed region.
func (hp *Heap) Remove(ref Ref) {
	s := hp.Get(ref)

	hp.logger.Debug("remove string", "hash", s.hash, "blen", s.blen)

	hp.strtab.unlink(hp, ref.index)
	hp.counters.removals++
}

// Free releases an unlinked string. The string must be removed first:
// freeing a linked string would leave a dangling chain entry.
func (hp *Heap) Free(ref Ref) {
	s := hp.Get(ref)
	doAssert(!s.linked)

	hp.freeObject(ref.index)
}

// RegisterFinalizer queues fn to run once at the next unsuppressed collection.
func (hp *Heap) RegisterFinalizer(fn Finalizer) {
	hp.finalizers = append(hp.finalizers, fn)
}

// Collect runs a mark-and-sweep cycle: unreferenced strings are swept, then
// the side effects not currently suppressed run (string table resize,
// finalizers, object compaction). Suppressed ones are deferred.
func (hp *Heap) Collect() {
	hp.collect(false)
}

// ForceResize applies the resize policy immediately, ignoring the periodic
// check. Under MSNoStringtableResize it is deferred until the suppressed
// region ends.
func (hp *Heap) ForceResize() error {
	if hp.closed {
		return ErrHeapClosed
	}

	if hp.flags&MSNoStringtableResize != 0 {
		hp.deferResize()

		return nil
	}

	if hp.strtab.buckets == nil {
		return nil
	}

	prev := hp.suppress()
	defer hp.restore(prev)

	target := hp.strtab.targetSize(hp.policy)
	if target == hp.strtab.size() {
		return nil
	}

	err := hp.strtab.rehash(hp, target)
	if err != nil {
		return fmt.Errorf("force resize: %w", err)
	}

	return nil
}

func (hp *Heap) collect(emergency bool) {
	if hp.collecting || hp.closed || hp.strtab.buckets == nil {
		return
	}

	hp.collecting = true
	defer func() { hp.collecting = false }()

	hp.counters.collections++
	swept := hp.sweep()

	if hp.flags&MSNoStringtableResize == 0 {
		_ = hp.ForceResize()
	} else {
		hp.deferResize()
	}

	if hp.flags&MSNoFinalizers == 0 {
		hp.runFinalizers()
	} else if len(hp.finalizers) > 0 {
		hp.finalizersPending = true
	}

	if hp.flags&MSNoObjectCompaction == 0 {
		hp.compact()
	} else if hp.compactionHook != nil {
		hp.compactionPending = true
	}

	hp.logger.Debug("mark-and-sweep",
		"emergency", emergency,
		"swept", swept,
		"flags", hp.flags,
		"strings", hp.strtab.count,
		"bytes_in_use", hp.used,
	)
}

// sweep frees every string without references. Strings are only reachable
// through their reference counts here, so a freshly interned string the
// caller has not yet referenced is swept too, once its intern has returned.
func (hp *Heap) sweep() int {
	swept := 0

	for _, head := range hp.strtab.buckets {
		idx := head
		for idx != 0 {
			s := hp.objects.slot(idx)
			next := s.next

			if s.refcount == 0 && s.pins == 0 {
				hp.strtab.unlink(hp, idx)
				hp.freeObject(idx)
				swept++
			}

			idx = next
		}
	}

	hp.counters.swept += int64(swept)

	return swept
}

func (hp *Heap) runFinalizers() {
	hp.finalizersPending = false

	for len(hp.finalizers) > 0 {
		batch := hp.finalizers
		hp.finalizers = nil

		for _, fn := range batch {
			fn(hp)
			hp.counters.finalizersRun++
		}
	}
}

func (hp *Heap) compact() {
	hp.compactionPending = false

	if hp.compactionHook != nil {
		hp.compactionHook(hp)
	}
}

// deferResize records that the table wants a resize once suppression ends.
// A collection provoked by the rehash allocation itself records nothing, so
// a failing resize does not retry forever.
func (hp *Heap) deferResize() {
	if hp.resizing || hp.strtab.buckets == nil {
		return
	}

	if hp.strtab.targetSize(hp.policy) != hp.strtab.size() {
		hp.resizePending = true
	}
}

// runDeferred performs maintenance postponed by suppressed regions. It runs
// when the outermost region ends.
func (hp *Heap) runDeferred() {
	if hp.closed {
		return
	}

	if hp.resizePending {
		hp.resizePending = false

		err := hp.ForceResize()
		if err != nil {
			hp.logger.Debug("deferred resize failed", "error", err)
		}
	}

	if hp.finalizersPending {
		hp.runFinalizers()
	}

	if hp.compactionPending {
		hp.compact()
	}
}

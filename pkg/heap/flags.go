package heap

// MSFlags are mark-and-sweep base flags. The suppression bits disable
// collector side effects for the duration of a sensitive operation.
type MSFlags uint8

// Collector side-effect suppression bits.
const (
	// MSNoStringtableResize keeps the collector from resizing the string table.
	MSNoStringtableResize MSFlags = 1 << iota
	// MSNoFinalizers keeps the collector from running finalizers, which may
	// intern or release strings.
	MSNoFinalizers
	// MSNoObjectCompaction keeps the collector from compacting objects,
	// which interns strings.
	MSNoObjectCompaction
)

const msPreventSideEffects = MSNoStringtableResize | MSNoFinalizers | MSNoObjectCompaction

// MSFlags returns the current mark-and-sweep base flags.
func (hp *Heap) MSFlags() MSFlags {
	return hp.flags
}

// Suppressed reports whether every bit of f is currently set.
func (hp *Heap) Suppressed(f MSFlags) bool {
	return hp.flags&f == f
}

// PreventSideEffects enters a suppressed region and returns the function
// that leaves it. Regions nest: leaving restores the flags saved on entry,
// and deferred maintenance runs once the outermost region is left.
//
//	defer hp.PreventSideEffects()()
func (hp *Heap) PreventSideEffects() func() {
	prev := hp.suppress()

	return func() { hp.restore(prev) }
}

func (hp *Heap) suppress() MSFlags {
	prev := hp.flags
	hp.flags |= msPreventSideEffects

	return prev
}

func (hp *Heap) restore(prev MSFlags) {
	hp.flags = prev

	if prev&msPreventSideEffects == 0 {
		hp.runDeferred()
	}
}

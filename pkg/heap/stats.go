package heap

// counters are the running event counts behind Stats.
type counters struct {
	hits          int64
	misses        int64
	inserts       int64
	removals      int64
	refzeroFrees  int64
	resizes       int64
	collections   int64
	swept         int64
	finalizersRun int64
	allocFailures int64
}

// Stats is a point-in-time view of the heap and its string table.
type Stats struct {
	Strings       int
	Buckets       int
	BytesInUse    int64
	MemoryLimit   int64 // 0 when unlimited.
	Hits          int64
	Misses        int64
	Inserts       int64
	Removals      int64
	RefzeroFrees  int64
	Resizes       int64
	Collections   int64
	Swept         int64
	FinalizersRun int64
	AllocFailures int64
	LongestChain  int

	// ChainLengths[n] is the number of buckets holding n strings.
	ChainLengths []int
}

// HitRate returns the lookup hit rate as a fraction (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// LoadFactor returns the average number of strings per bucket.
func (s Stats) LoadFactor() float64 {
	if s.Buckets == 0 {
		return 0
	}

	return float64(s.Strings) / float64(s.Buckets)
}

// Stats returns current heap statistics. It walks every chain.
func (hp *Heap) Stats() Stats {
	st := Stats{
		Strings:       hp.strtab.count,
		Buckets:       hp.strtab.size(),
		BytesInUse:    hp.used,
		MemoryLimit:   hp.limit,
		Hits:          hp.counters.hits,
		Misses:        hp.counters.misses,
		Inserts:       hp.counters.inserts,
		Removals:      hp.counters.removals,
		RefzeroFrees:  hp.counters.refzeroFrees,
		Resizes:       hp.counters.resizes,
		Collections:   hp.counters.collections,
		Swept:         hp.counters.swept,
		FinalizersRun: hp.counters.finalizersRun,
		AllocFailures: hp.counters.allocFailures,
	}

	lengths := hp.chainLengths()
	for _, n := range lengths {
		for len(st.ChainLengths) <= n {
			st.ChainLengths = append(st.ChainLengths, 0)
		}

		st.ChainLengths[n]++
		st.LongestChain = max(st.LongestChain, n)
	}

	return st
}

func (hp *Heap) chainLengths() []int {
	out := make([]int, len(hp.strtab.buckets))

	for i, head := range hp.strtab.buckets {
		for idx := head; idx != 0; idx = hp.objects.slot(idx).next {
			out[i]++
		}
	}

	return out
}

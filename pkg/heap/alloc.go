package heap

import (
	"fmt"

	"github.com/Sumatoshi-tech/strtab/pkg/safeconv"
)

// alloc accounts size bytes. The hook and any collection it provokes run
// first; if the limit would be exceeded, an emergency collection runs and
// the allocation is retried once.
func (hp *Heap) alloc(size int) error {
	if hp.allocHook != nil {
		hp.allocHook(hp, size)
	}

	if hp.gcInterval > 0 {
		hp.allocCount++
		if hp.allocCount%hp.gcInterval == 0 {
			hp.collect(false)
		}
	}

	need := int64(size)

	if hp.limit > 0 && hp.used+need > hp.limit {
		hp.collect(true)

		if hp.used+need > hp.limit {
			hp.counters.allocFailures++

			return fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrAllocFailed, size, hp.used, hp.limit)
		}
	}

	hp.used += need

	return nil
}

func (hp *Heap) release(size int) {
	hp.used -= int64(size)
	doAssert(hp.used >= 0)
}

// allocInitString allocates and initializes a string that is not linked
// anywhere yet. Linking is the caller's job and must happen before anything
// that could let the string be dropped.
func (hp *Heap) allocInitString(data []byte, hash uint32, ext []byte) (uint32, error) {
	if uint64(len(data)) > uint64(hp.maxByteLen) {
		return 0, fmt.Errorf("%w: %w: %d bytes, limit %d", ErrAllocFailed, ErrStringTooLong, len(data), hp.maxByteLen)
	}

	external := ext != nil
	size := ObjectSize(len(data), external)

	err := hp.alloc(size)
	if err != nil {
		return 0, err
	}

	idx, ok := hp.objects.malloc()
	if !ok {
		hp.release(size)
		hp.counters.allocFailures++

		return 0, fmt.Errorf("%w: object arena exhausted", ErrAllocFailed)
	}

	s := hp.objects.slot(idx)
	*s = HString{
		gen:  s.gen,
		hash: hash,
		blen: safeconv.MustIntToUint32(len(data)),
	}

	if external {
		doAssert(len(ext) == len(data))

		s.flags = FlagExternalData
		s.data = externalData(ext)
	} else {
		buf := make([]byte, len(data)+1)
		copy(buf, data)
		s.data = inlineData(buf)
	}

	s.classify(data)

	hp.logger.Debug("interned string",
		"hash", s.hash,
		"blen", s.blen,
		"clen", s.clen,
		"arridx", s.IsArrayIndex(),
		"extdata", external,
	)

	return idx, nil
}

// freeObject releases an unlinked string.
func (hp *Heap) freeObject(idx uint32) {
	s := hp.objects.slot(idx)
	doAssert(!s.linked)

	hp.release(ObjectSize(int(s.blen), s.HasExternalData()))
	hp.objects.free(idx)
}

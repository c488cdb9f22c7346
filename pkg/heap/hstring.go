package heap

import (
	"unsafe"

	"github.com/Sumatoshi-tech/strtab/pkg/safeconv"
	"github.com/Sumatoshi-tech/strtab/pkg/strclass"
)

// Flags is the per-string flag set.
type Flags uint16

// String flags. Bits above FlagExternalData are free for runtime-specific
// use (e.g. symbol strings) and are preserved by the table untouched.
const (
	// FlagArrayIndex marks canonical decimal array index content.
	FlagArrayIndex Flags = 1 << iota
	// FlagASCII marks content whose byte length equals its character length.
	FlagASCII
	// FlagExternalData marks a payload owned outside the heap.
	FlagExternalData
)

// Accounted allocation sizes.
const (
	headerSize         = int(unsafe.Sizeof(HString{}))
	externalHeaderSize = headerSize + int(unsafe.Sizeof([]byte(nil)))
	bucketSlotSize     = int(unsafe.Sizeof(uint32(0)))
)

// ObjectSize returns the accounted allocation size of a string of byteLen
// bytes. Inline strings carry their content plus a NUL terminator.
func ObjectSize(byteLen int, external bool) int {
	if external {
		return externalHeaderSize
	}

	return headerSize + byteLen + 1
}

// payload is the storage variant of a string.
type payload interface {
	bytes() []byte
}

// inlineData is heap-owned content followed by a NUL byte.
type inlineData []byte

func (p inlineData) bytes() []byte { return p[:len(p)-1] }

// externalData is content owned and lifetime-managed by the host.
type externalData []byte

func (p externalData) bytes() []byte { return p }

// HString is an interned string. Content, hash, lengths and flags are
// immutable once the string is created.
type HString struct {
	data     payload
	refcount int64
	gen      uint32
	hash     uint32
	blen     uint32
	clen     uint32
	arridx   uint32

	// prev and next link the string into its bucket chain; 0 is null.
	prev, next uint32

	// pins keeps a string being returned by an intern out of sweeps.
	pins uint16

	flags  Flags
	linked bool
}

// Bytes returns the content. The slice is shared and must not be modified.
func (s *HString) Bytes() []byte {
	return s.data.bytes()
}

// String returns the content as a Go string.
func (s *HString) String() string {
	return string(s.data.bytes())
}

// CString returns the inline content including its NUL terminator.
// External strings have no terminator and report false.
func (s *HString) CString() ([]byte, bool) {
	p, ok := s.data.(inlineData)
	if !ok {
		return nil, false
	}

	return p, true
}

// Hash returns the cached content hash.
func (s *HString) Hash() uint32 { return s.hash }

// ByteLen returns the content length in bytes.
func (s *HString) ByteLen() int { return int(s.blen) }

// CharLen returns the content length in code points.
func (s *HString) CharLen() int { return int(s.clen) }

// Flags returns the flag set.
func (s *HString) Flags() Flags { return s.flags }

// IsArrayIndex reports whether the content is a canonical array index.
func (s *HString) IsArrayIndex() bool { return s.flags&FlagArrayIndex != 0 }

// ArrayIndex returns the cached array index value.
func (s *HString) ArrayIndex() (uint32, bool) {
	if !s.IsArrayIndex() {
		return strclass.NoArrayIndex, false
	}

	return s.arridx, true
}

// IsASCII reports whether the content is pure ASCII.
func (s *HString) IsASCII() bool { return s.flags&FlagASCII != 0 }

// HasExternalData reports whether the payload lives outside the heap.
func (s *HString) HasExternalData() bool { return s.flags&FlagExternalData != 0 }

// RefCount returns the collector-owned reference count.
func (s *HString) RefCount() int64 { return s.refcount }

// Linked reports whether the string is currently in a bucket chain.
func (s *HString) Linked() bool { return s.linked }

// classify fills the character length and content flags.
func (s *HString) classify(data []byte) {
	if idx, ok := strclass.ArrayIndex(data); ok {
		// Array index strings are always ASCII.
		s.flags |= FlagArrayIndex | FlagASCII
		s.arridx = idx
		s.clen = s.blen

		return
	}

	clen := strclass.CharLen(data)
	s.clen = safeconv.MustIntToUint32(clen)

	if clen == len(data) {
		s.flags |= FlagASCII
	}
}

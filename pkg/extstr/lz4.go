package extstr

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"

	"github.com/Sumatoshi-tech/strtab/pkg/safeconv"
)

// File layout, little endian:
//
//	magic   [4]byte "STRP"
//	version uint32
//	flags   uint32  (flagLZ4 when the body is block-compressed)
//	count   uint32  number of entries
//	rawLen  uint32  uncompressed body size
//	body    count uint32 lengths followed by the concatenated blob
const (
	formatVersion = 1
	flagLZ4       = 1 << 0

	uint32ByteSize = 4
	headerSize     = 4 + 4*uint32ByteSize

	filePerm = 0o644

	// An LZ4 block expands at most lz4MaxRatio times plus a small tail.
	lz4MaxRatio    = 255
	lz4MaxOverhead = 16
)

var magic = [4]byte{'S', 'T', 'R', 'P'}

type fileHeader struct {
	Magic   [4]byte
	Version uint32
	Flags   uint32
	Count   uint32
	RawLen  uint32
}

// Encode serializes p. The body is LZ4 block-compressed unless that would
// not make it smaller.
func Encode(p *Pool) ([]byte, error) {
	if p == nil {
		p = &Pool{}
	}

	raw := new(bytes.Buffer)

	lengths := make([]uint32, p.Len())
	for i := range lengths {
		lengths[i] = p.spans[i].len
	}

	err := binary.Write(raw, binary.LittleEndian, lengths)
	if err != nil {
		return nil, fmt.Errorf("encode lengths: %w", err)
	}

	raw.Write(p.blob)

	hdr := fileHeader{
		Magic:   magic,
		Version: formatVersion,
		Count:   safeconv.MustIntToUint32(p.Len()),
		RawLen:  safeconv.MustIntToUint32(raw.Len()),
	}

	body := raw.Bytes()

	if raw.Len() > 0 {
		compressed := make([]byte, lz4.CompressBlockBound(raw.Len()))

		written, cerr := lz4.CompressBlock(raw.Bytes(), compressed, nil)
		if cerr != nil {
			return nil, fmt.Errorf("compress pool: %w", cerr)
		}

		if written > 0 && written < raw.Len() {
			hdr.Flags |= flagLZ4
			body = compressed[:written]
		}
	}

	out := bytes.NewBuffer(make([]byte, 0, headerSize+len(body)))

	err = binary.Write(out, binary.LittleEndian, hdr)
	if err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}

	out.Write(body)

	return out.Bytes(), nil
}

// Decode parses a pool serialized by Encode.
func Decode(data []byte) (*Pool, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d byte header", ErrCorrupt, len(data))
	}

	var hdr fileHeader

	err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &hdr)
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	if hdr.Magic != magic {
		return nil, ErrBadMagic
	}

	if hdr.Version != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}

	lengthsSize := uint64(hdr.Count) * uint32ByteSize
	if lengthsSize > uint64(hdr.RawLen) {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", ErrCorrupt, hdr.Count, hdr.RawLen)
	}

	body := data[headerSize:]

	raw := body
	if hdr.Flags&flagLZ4 != 0 {
		if uint64(hdr.RawLen) > lz4MaxRatio*uint64(len(body))+lz4MaxOverhead {
			return nil, fmt.Errorf("%w: %d byte body cannot expand to %d", ErrCorrupt, len(body), hdr.RawLen)
		}

		raw = make([]byte, hdr.RawLen)

		n, uerr := lz4.UncompressBlock(body, raw)
		if uerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, uerr)
		}

		raw = raw[:n]
	}

	if uint64(len(raw)) != uint64(hdr.RawLen) {
		return nil, fmt.Errorf("%w: body is %d bytes, want %d", ErrCorrupt, len(raw), hdr.RawLen)
	}

	lengths := make([]uint32, hdr.Count)

	err = binary.Read(bytes.NewReader(raw[:lengthsSize]), binary.LittleEndian, lengths)
	if err != nil {
		return nil, fmt.Errorf("decode lengths: %w", err)
	}

	blob := raw[lengthsSize:]

	var total uint64
	for _, n := range lengths {
		total += uint64(n)
	}

	if total != uint64(len(blob)) {
		return nil, fmt.Errorf("%w: entries span %d bytes, blob has %d", ErrCorrupt, total, len(blob))
	}

	return fromParts(bytes.Clone(blob), lengths), nil
}

// Save writes p to path on fs.
func Save(fs afero.Fs, path string, p *Pool) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}

	err = afero.WriteFile(fs, path, data, filePerm)
	if err != nil {
		return fmt.Errorf("write pool %s: %w", path, err)
	}

	return nil
}

// Load reads a pool from path on fs.
func Load(fs afero.Fs, path string) (*Pool, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read pool %s: %w", path, err)
	}

	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load pool %s: %w", path, err)
	}

	return p, nil
}

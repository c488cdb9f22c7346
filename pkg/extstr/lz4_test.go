package extstr_test

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/strtab/pkg/extstr"
)

const (
	testPoolPath = "/pools/known.lz4"

	// testRepetitiveEntries is large enough for LZ4 to shrink the body.
	testRepetitiveEntries = 200
)

func repetitivePool() *extstr.Pool {
	strs := make([]string, testRepetitiveEntries)
	for i := range strs {
		strs[i] = fmt.Sprintf("property_name_%04d", i)
	}

	return extstr.NewPool(strs)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	orig := repetitivePool()

	require.NoError(t, extstr.Save(fs, testPoolPath, orig))

	loaded, err := extstr.Load(fs, testPoolPath)
	require.NoError(t, err)

	assert.Equal(t, orig.Strings(), loaded.Strings())
	assert.Equal(t, "property_name_0042", string(loaded.Provide([]byte("property_name_0042"))))
}

func TestEncode_CompressesRepetitiveBody(t *testing.T) {
	t.Parallel()

	p := repetitivePool()

	data, err := extstr.Encode(p)
	require.NoError(t, err)

	flags := binary.LittleEndian.Uint32(data[8:12])
	assert.Equal(t, uint32(1), flags&1)
	assert.Less(t, len(data), p.Size())
}

func TestEncode_SmallBodyStoredRaw(t *testing.T) {
	t.Parallel()

	data, err := extstr.Encode(extstr.NewPool([]string{"q"}))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[8:12]))

	p, err := extstr.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"q"}, p.Strings())
}

func TestEncode_EmptyPool(t *testing.T) {
	t.Parallel()

	data, err := extstr.Encode(nil)
	require.NoError(t, err)

	p, err := extstr.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	valid, err := extstr.Encode(repetitivePool())
	require.NoError(t, err)

	badMagic := append([]byte("XXXX"), valid[4:]...)

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:8], 99)

	tooManyEntries := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(tooManyEntries[12:16], 1<<30)

	// A bare header claiming a 4 GiB compressed body.
	inflated := append([]byte(nil), valid[:20]...)
	binary.LittleEndian.PutUint32(inflated[8:12], 1)
	binary.LittleEndian.PutUint32(inflated[16:20], 1<<32-1)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short", []byte("STRP"), extstr.ErrCorrupt},
		{"magic", badMagic, extstr.ErrBadMagic},
		{"version", badVersion, extstr.ErrUnsupportedVersion},
		{"entries", tooManyEntries, extstr.ErrCorrupt},
		{"truncated body", valid[:len(valid)-5], extstr.ErrCorrupt},
		{"inflated length", inflated, extstr.ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, decErr := extstr.Decode(tt.data)
			require.ErrorIs(t, decErr, tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := extstr.Load(afero.NewMemMapFs(), "/missing.lz4")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "/missing.lz4"))
}

func TestSave_ReadOnlyFs(t *testing.T) {
	t.Parallel()

	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := extstr.Save(fs, testPoolPath, repetitivePool())
	require.Error(t, err)
}

package extstr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/strtab/pkg/extstr"
)

func TestNewPool_DedupsAndSorts(t *testing.T) {
	t.Parallel()

	p := extstr.NewPool([]string{"length", "", "prototype", "length", "constructor"})

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []string{"constructor", "length", "prototype"}, p.Strings())
	assert.Equal(t, len("constructorlengthprototype"), p.Size())
}

func TestProvide_ReturnsPooledSubslice(t *testing.T) {
	t.Parallel()

	p := extstr.NewPool([]string{"alpha", "beta"})

	got := p.Provide([]byte("beta"))
	require.NotNil(t, got)
	assert.Equal(t, "beta", string(got))
	assert.Equal(t, len(got), cap(got), "pooled slice must not expose the rest of the blob")

	again := p.Provide([]byte("beta"))
	assert.Same(t, &got[0], &again[0])
}

func TestProvide_MissReturnsNil(t *testing.T) {
	t.Parallel()

	p := extstr.NewPool([]string{"alpha"})

	assert.Nil(t, p.Provide([]byte("gamma")))
	assert.Nil(t, p.Provide(nil))
	assert.True(t, p.Contains("alpha"))
	assert.False(t, p.Contains("alp"))
}

func TestNilPool_IsEmpty(t *testing.T) {
	t.Parallel()

	var p *extstr.Pool

	assert.Nil(t, p.Provide([]byte("x")))
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Size())
	assert.Nil(t, p.Strings())
	assert.False(t, p.Contains("x"))
}

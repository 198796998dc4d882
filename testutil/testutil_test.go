package testutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	assert.Equal(t, a.Ints(16, 100), b.Ints(16, 100))
	assert.Equal(t, a.Bytes(32), b.Bytes(32))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(42)
	first := rng.Uint64()
	rng.Reset()
	assert.Equal(t, first, rng.Uint64())
}

func TestRNG_Range(t *testing.T) {
	rng := NewRNG(1)
	for range 100 {
		v := rng.Range(-3, 3)
		assert.GreaterOrEqual(t, v, -3)
		assert.Less(t, v, 3)
	}
}

func TestRNG_Ints(t *testing.T) {
	rng := NewRNG(7)
	for _, v := range rng.Ints(64, 10) {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 10)
	}
}

func TestRNG_TextBytes(t *testing.T) {
	rng := NewRNG(7)
	b := rng.TextBytes(1000)
	assert.Len(t, b, 1000)
	assert.True(t, bytes.Contains(b, []byte(" ")))
	assert.Empty(t, rng.TextBytes(0))
}

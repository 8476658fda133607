package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/quadra/internal/ir"
)

func TestSequentialIDs(t *testing.T) {
	gen := NewSequentialIDs("")
	assert.Equal(t, "run-0001", gen.Generate())
	assert.Equal(t, "run-0002", gen.Generate())

	gen = NewSequentialIDs("case")
	assert.Equal(t, "case-0001", gen.Generate())
}

func TestFixedIDs(t *testing.T) {
	gen := NewFixedIDs("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestSameFloat(t *testing.T) {
	assert.True(t, SameFloat(math.NaN(), math.NaN()))
	assert.True(t, SameFloat(math.Inf(1), math.Inf(1)))
	assert.False(t, SameFloat(math.Inf(1), math.Inf(-1)))
	assert.False(t, SameFloat(0, math.Copysign(0, -1)))
	assert.False(t, SameFloat(math.NaN(), 1))
	assert.True(t, SameFloat(0.1+0.2, 0.1+0.2))
}

func TestAssertSameSamples(t *testing.T) {
	a := []ir.Sample{{X: 0, Y: math.NaN()}, {X: 1, Y: math.Inf(-1)}}
	b := []ir.Sample{{X: 0, Y: math.NaN()}, {X: 1, Y: math.Inf(-1)}}
	assert.True(t, AssertSameSamples(t, a, b))
}

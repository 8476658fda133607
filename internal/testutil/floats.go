package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/quadra/internal/ir"
)

// SameFloat reports whether a and b are the same IEEE value. NaN equals
// NaN and +0 differs from -0.
func SameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Float64bits(a) == math.Float64bits(b)
}

// AssertSameFloat fails the test unless want and got are the same IEEE value.
func AssertSameFloat(t testing.TB, want, got float64, msgAndArgs ...any) bool {
	t.Helper()
	if SameFloat(want, got) {
		return true
	}
	return assert.Fail(t, "want "+ir.FormatFloat(want)+", got "+ir.FormatFloat(got), msgAndArgs...)
}

// AssertSameSamples fails the test unless both traces hold the same IEEE
// values at every index.
func AssertSameSamples(t testing.TB, want, got []ir.Sample) bool {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return false
	}
	ok := true
	for i := range want {
		ok = AssertSameFloat(t, want[i].X, got[i].X, "x[%d]", i) && ok
		ok = AssertSameFloat(t, want[i].Y, got[i].Y, "y[%d]", i) && ok
	}
	return ok
}

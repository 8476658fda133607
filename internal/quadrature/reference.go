package quadrature

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
)

// ReferenceNodes is the number of Gauss-Legendre nodes used by Reference.
const ReferenceNodes = 64

// Reference estimates the integral of f over [a, b] with a fixed
// Gauss-Legendre rule. It is reported alongside a composite result to show
// the approximation error and never feeds back into it. Reversed bounds
// give the negated integral; non-finite bounds give NaN.
func Reference(f expr.Evaluator, a, b float64) float64 {
	switch {
	case !ir.IsFinite(a) || !ir.IsFinite(b):
		return math.NaN()
	case a == b:
		return 0
	case a > b:
		return -Reference(f, b, a)
	}
	return quad.Fixed(f, a, b, ReferenceNodes, quad.Legendre{}, 0)
}

// AbsError returns |integral - reference|.
func AbsError(integral, reference float64) float64 {
	return math.Abs(integral - reference)
}

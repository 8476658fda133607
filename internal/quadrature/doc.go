// Package quadrature approximates definite integrals with fixed-step
// composite rules.
//
// Every rule shares one skeleton: partition [a,b] into n equal subintervals
// of width h=(b-a)/n, sample the compiled formula at the rule's node
// indices, accumulate Σ weight(i)·f(x_i), and scale by a rule constant.
//
// Rules:
//
//	trapezoidal   i = 0..n     n ≥ 1              1 2 2 ... 2 1          h/2
//	simpson13     i = 0..n     n even             1 4 2 4 ... 4 1        h/3
//	simpson38     i = 0..n     n multiple of 3    1 3 3 2 3 3 ... 1      3h/8
//	boole         i = 0..n     n multiple of 4    7 32 12 32 14 ... 7    2h/45
//	open_simpson  i = 1..n-1   n even             4 2 4 ... 4            h/3
//
// VALIDATION:
// n is checked before any sampling. A bad n is a *RequestError; it never
// produces a partial result.
//
// NON-FINITE SAMPLES:
// A sample that evaluates to NaN or ±Inf is recorded in the trace and
// summed like any other, so the integral becomes non-finite. Callers detect
// this with ir.Result.Finite and report the integral as undefined over the
// interval.
//
// DETERMINISM:
// With more than one worker, samples are evaluated concurrently but the sum
// is always formed in increasing index order. Parallel and serial results
// are bit-identical.
package quadrature

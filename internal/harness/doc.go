// Package harness runs conformance scenarios against the quadrature engine.
//
// A scenario is a YAML file listing integration cases and what each must
// produce:
//
//	name: polynomials
//	description: "Closed rules on low-degree polynomials"
//	exercises: ../exercises/calculus.cue
//	cases:
//	  - name: square
//	    formula: "x^2"
//	    a: 0
//	    b: 2
//	    n: 4
//	    rule: simpson13
//	    expect:
//	      integral: 2.6666666666666665
//	      tolerance: 1e-12
//	      samples: 5
//	  - name: sine
//	    exercise: sine
//	    expect:
//	      reference_tolerance: 1e-4
//	  - name: odd-n
//	    formula: x
//	    a: 0
//	    b: 1
//	    n: 5
//	    rule: simpson13
//	    expect:
//	      error: N_NOT_DIVISIBLE
//	assertions:
//	  - type: same_trace
//	    cases: [square, square-glyph]
//
// Bounds are numbers or formula strings ("pi/2", "1/0"). A case may name an
// exercise from the scenario's exercise set and override any of its fields.
//
// # Expectations
//
//   - integral + tolerance: |got - want| within tolerance (absolute), or
//     within rel_tolerance
//   - error: the request is rejected with this RequestError code
//   - nonfinite: whether the integral is NaN or infinite
//   - samples: length of the sample trace
//   - reference_tolerance: distance to the Gauss-Legendre reference
//
// # Assertion Types
//
//   - same_trace: the listed cases produce bit-identical samples and integral
//   - distinct_trace: the listed cases produce pairwise different traces
//   - same_request: the listed cases share a content-addressed request id
//
// # Deterministic Testing
//
// Every successful case is written to an in-memory run ledger with
// sequential run ids and a deterministic clock, then read back. The ledger
// view of each case (run id, seq, request id, integral, samples, trace hash)
// is what golden snapshots record, so identical scenarios produce
// byte-identical snapshots.
package harness

package harness

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
)

// checkRejected checks the expectations of a case whose request was
// rejected before sampling.
func checkRejected(e Expect, cr *CaseResult, err *quadrature.RequestError) {
	switch {
	case e.Error == "":
		cr.addError("unexpected error: %v", err)
	case e.Error != string(err.Code):
		cr.addError("expected error %s, got %s (%s)", e.Error, err.Code, err.Message)
	}
}

// checkComputed checks the expectations of a computed case. reference is
// only called when a reference tolerance is set.
func checkComputed(e Expect, cr *CaseResult, reference func() float64) {
	if e.Error != "" {
		cr.addError("expected error %s, got integral %s", e.Error, ir.FormatFloat(cr.Integral))
		return
	}

	finite := ir.IsFinite(cr.Integral)
	if e.NonFinite != nil && *e.NonFinite == finite {
		if finite {
			cr.addError("expected a non-finite integral, got %s", ir.FormatFloat(cr.Integral))
		} else {
			cr.addError("expected a finite integral, got %s (undefined over this interval)", ir.FormatFloat(cr.Integral))
		}
	}

	if e.Samples != nil && *e.Samples != len(cr.Samples) {
		cr.addError("expected %d samples, got %d", *e.Samples, len(cr.Samples))
	}

	if e.Integral != nil {
		want := *e.Integral
		if !matchFloat(want, cr.Integral, e.tolerance(), e.RelTolerance) {
			cr.addError("integral: expected %s ± %g, got %s (off by %g)",
				ir.FormatFloat(want), e.tolerance(), ir.FormatFloat(cr.Integral), math.Abs(cr.Integral-want))
		}
	}

	if e.ReferenceTolerance != nil {
		ref := reference()
		if diff := quadrature.AbsError(cr.Integral, ref); !(diff <= *e.ReferenceTolerance) {
			cr.addError("reference: |%s - %s| = %g exceeds %g",
				ir.FormatFloat(cr.Integral), ir.FormatFloat(ref), diff, *e.ReferenceTolerance)
		}
	}
}

// matchFloat compares an expected and actual integral. Non-finite values
// must match exactly (NaN matches NaN).
func matchFloat(want, got, absTol, relTol float64) bool {
	if !ir.IsFinite(want) || !ir.IsFinite(got) {
		if math.IsNaN(want) {
			return math.IsNaN(got)
		}
		return want == got
	}
	return scalar.EqualWithinAbsOrRel(want, got, absTol, relTol)
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var msgs []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func evaluateAssertion(result *Result, a Assertion) error {
	cases := make([]*CaseResult, 0, len(a.Cases))
	for _, name := range a.Cases {
		cr := result.Case(name)
		if cr == nil {
			return &AssertionError{Type: a.Type, Expected: "case " + name, Actual: "no such case"}
		}
		cases = append(cases, cr)
	}

	switch a.Type {
	case AssertSameTrace:
		return assertSame(a.Type, cases, func(c *CaseResult) string { return c.TraceHash })
	case AssertSameRequest:
		return assertSame(a.Type, cases, func(c *CaseResult) string { return c.RequestID })
	case AssertDistinctTrace:
		seen := make(map[string]string, len(cases))
		for _, c := range cases {
			if c.TraceHash == "" {
				return &AssertionError{Type: a.Type, Expected: c.Name + " to compute", Actual: "error " + c.ErrorCode}
			}
			if prev, ok := seen[c.TraceHash]; ok {
				return &AssertionError{
					Type:     a.Type,
					Expected: "distinct traces",
					Actual:   fmt.Sprintf("%s and %s are identical", prev, c.Name),
				}
			}
			seen[c.TraceHash] = c.Name
		}
		return nil
	default:
		return &AssertionError{Type: a.Type, Expected: "a known assertion type", Actual: a.Type}
	}
}

// assertSame checks that key is non-empty and equal across cases.
func assertSame(typ string, cases []*CaseResult, key func(*CaseResult) string) error {
	want := key(cases[0])
	for _, c := range cases {
		if k := key(c); k == "" || k != want {
			return &AssertionError{
				Type:     typ,
				Expected: strings.Join(caseNames(cases), ", ") + " to match",
				Actual:   fmt.Sprintf("%s differs from %s", c.Name, cases[0].Name),
			}
		}
	}
	return nil
}

func caseNames(cases []*CaseResult) []string {
	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.Name
	}
	return names
}

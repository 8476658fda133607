// Package exercise reads exercise sets: named integration problems written
// in CUE and compiled into quadrature requests.
//
// A set is a CUE struct keyed by exercise id:
//
//	exercise: sine: {
//		name:    "Sine"
//		formula: "sin(x)"
//		a:       0
//		b:       "pi"
//		n:       12
//		rule:    "simpson13"
//	}
//
// Bounds are numbers or formula strings evaluated as constants.
package exercise

import (
	"fmt"
	"math"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
)

// Exercise is one integration problem.
type Exercise struct {
	ID      string
	Name    string
	Formula string
	Latex   string
	A       float64
	B       float64
	N       int
	Rule    ir.Rule
}

// Request returns the quadrature request for the exercise.
func (e Exercise) Request() ir.Request {
	return ir.Request{Formula: e.Formula, A: e.A, B: e.B, N: e.N}
}

// schema is unified with every exercise before its fields are read.
const schema = `
#Exercise: {
	name?:    string
	latex?:   string
	formula:  string & !=""
	a:        number | string
	b:        number | string
	n:        int & >0
	rule:     string
}
`

// Compile converts the CUE value of one exercise into an Exercise. The id
// is the value's last path selector.
func Compile(v cue.Value) (*Exercise, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	ex := &Exercise{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		ex.ID = labelName(labels[len(labels)-1])
	}

	src := v
	def := v.Context().CompileString(schema).LookupPath(cue.ParsePath("#Exercise"))
	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var err error
	if ex.Formula, err = v.LookupPath(cue.ParsePath("formula")).String(); err != nil {
		return nil, formatCUEError(err)
	}
	if _, perr := expr.Parse(ex.Formula); perr != nil {
		return nil, &CompileError{
			Field:   "formula",
			Message: perr.Error(),
			Pos:     pos(src, "formula"),
		}
	}

	ex.Name = ex.ID
	if nv := v.LookupPath(cue.ParsePath("name")); nv.Exists() {
		if ex.Name, err = nv.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}
	if lv := v.LookupPath(cue.ParsePath("latex")); lv.Exists() {
		if ex.Latex, err = lv.String(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	if ex.A, err = bound(v, src, "a"); err != nil {
		return nil, err
	}
	if ex.B, err = bound(v, src, "b"); err != nil {
		return nil, err
	}

	n, err := v.LookupPath(cue.ParsePath("n")).Int64()
	if err != nil {
		return nil, formatCUEError(err)
	}
	ex.N = int(n)

	ruleVal := v.LookupPath(cue.ParsePath("rule"))
	ruleName, err := ruleVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rule, ok := ir.ParseRule(ruleName)
	if !ok {
		return nil, &CompileError{
			Field:   "rule",
			Message: fmt.Sprintf("unknown rule %q", ruleName),
			Pos:     pos(src, "rule"),
		}
	}
	ex.Rule = rule

	r, err := quadrature.Lookup(rule)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(ex.N); err != nil {
		return nil, &CompileError{
			Field:   "n",
			Message: err.Error(),
			Pos:     pos(src, "n"),
		}
	}

	return ex, nil
}

// pos returns the source position of field as written, not as unified
// with the schema.
func pos(v cue.Value, field string) token.Pos {
	return v.LookupPath(cue.ParsePath(field)).Pos()
}

// labelName returns the unquoted form of string labels, so "1" and 1 name
// the same exercise.
func labelName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel && sel.ConstraintType() < cue.PatternConstraint {
		return sel.Unquoted()
	}
	return sel.String()
}

// bound reads a or b. A string is compiled as a constant formula, so
// "pi/2" is accepted and "x+1" is not; the result must be finite.
func bound(v, src cue.Value, field string) (float64, error) {
	bv := v.LookupPath(cue.ParsePath(field))
	if s, err := bv.String(); err == nil {
		prog, perr := expr.Parse(s)
		if perr != nil {
			return 0, &CompileError{Field: field, Message: perr.Error(), Pos: pos(src, field)}
		}
		if !prog.Constant() {
			return 0, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("bound %q depends on x", s),
				Pos:     pos(src, field),
			}
		}
		x := prog.Eval(0)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("bound %q is not a finite number", s),
				Pos:     pos(src, field),
			}
		}
		return x, nil
	}
	x, err := bv.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return x, nil
}

// Defaults returns the built-in exercises shown when no set is loaded.
func Defaults() []Exercise {
	return []Exercise{
		{
			ID:      "1",
			Name:    "Sine",
			Formula: "sin(x)",
			Latex:   `\sin(x)`,
			A:       0,
			B:       3.14159,
			N:       12,
			Rule:    ir.RuleSimpson13,
		},
		{
			ID:      "2",
			Name:    "Cubic",
			Formula: "x^3 - 2*x",
			Latex:   `x^{3} - 2 \cdot x`,
			A:       -1,
			B:       2,
			N:       12,
			Rule:    ir.RuleSimpson38,
		},
	}
}

// CompileError represents an exercise error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

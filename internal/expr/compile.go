package expr

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the capacity of the shared compiler behind the
// package-level functions.
const DefaultCacheSize = 256

// Evaluator maps x to f(x). It is pure and never panics; a failure shows up
// as NaN.
type Evaluator func(x float64) float64

// CompileError reports a formula the parser rejected. Source is the
// normalized text and Offset indexes into it.
type CompileError struct {
	Source  string
	Offset  int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%q:%d: %s", e.Source, e.Offset, e.Message)
}

// Program is a parsed formula.
type Program struct {
	Source     string
	Normalized string
	Root       Node
}

// Eval evaluates the program at x.
func (p *Program) Eval(x float64) float64 { return p.Root.Eval(x) }

// String renders the fully parenthesized tree.
func (p *Program) String() string { return p.Root.String() }

// Constant reports whether the program never reads x, so its value is the
// same everywhere.
func (p *Program) Constant() bool { return !usesVar(p.Root) }

func usesVar(n Node) bool {
	switch n := n.(type) {
	case Var:
		return true
	case Neg:
		return usesVar(n.Arg)
	case Binary:
		return usesVar(n.Left) || usesVar(n.Right)
	case Pow:
		return usesVar(n.Base) || usesVar(n.Exp)
	case Call:
		for _, a := range n.Args {
			if usesVar(a) {
				return true
			}
		}
	}
	return false
}

// Parse normalizes and parses formula.
func Parse(formula string) (*Program, error) {
	normalized := Normalize(formula)
	root, err := parse(normalized)
	if err != nil {
		return nil, err
	}
	return &Program{Source: formula, Normalized: normalized, Root: root}, nil
}

type cached struct {
	prog *Program
	err  error
}

// Compiler parses formulas and keeps recently used programs, including
// rejected ones, in a bounded LRU cache keyed by the original text.
type Compiler struct {
	cache *lru.Cache
}

// NewCompiler returns a compiler caching up to size programs.
func NewCompiler(size int) (*Compiler, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("new compiler: %w", err)
	}
	return &Compiler{cache: c}, nil
}

// MustNewCompiler is like NewCompiler but panics on error.
func MustNewCompiler(size int) *Compiler {
	c, err := NewCompiler(size)
	if err != nil {
		panic(err)
	}
	return c
}

// Program returns the parsed program for formula.
func (c *Compiler) Program(formula string) (*Program, error) {
	if v, ok := c.cache.Get(formula); ok {
		e := v.(cached)
		return e.prog, e.err
	}
	prog, err := Parse(formula)
	c.cache.Add(formula, cached{prog: prog, err: err})
	return prog, err
}

// Compile returns an evaluator for formula. A formula that does not parse
// yields an evaluator that always returns NaN.
func (c *Compiler) Compile(formula string) Evaluator {
	prog, err := c.Program(formula)
	if err != nil {
		return nan
	}
	return prog.Eval
}

// Evaluate compiles formula and evaluates it at x.
func (c *Compiler) Evaluate(formula string, x float64) float64 {
	return c.Compile(formula)(x)
}

// Validate reports whether formula parses. Nothing is evaluated.
func (c *Compiler) Validate(formula string) bool {
	_, err := c.Program(formula)
	return err == nil
}

// Len returns the number of cached programs.
func (c *Compiler) Len() int { return c.cache.Len() }

func nan(float64) float64 { return math.NaN() }

var defaultCompiler = MustNewCompiler(DefaultCacheSize)

// Default returns the shared compiler used by the package-level functions.
func Default() *Compiler { return defaultCompiler }

// Compile compiles formula with the shared compiler.
func Compile(formula string) Evaluator { return defaultCompiler.Compile(formula) }

// Evaluate evaluates formula at x with the shared compiler.
func Evaluate(formula string, x float64) float64 { return defaultCompiler.Evaluate(formula, x) }

// Validate reports whether formula parses.
func Validate(formula string) bool { return defaultCompiler.Validate(formula) }

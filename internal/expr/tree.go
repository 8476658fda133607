package expr

import (
	"math"
	"strconv"
	"strings"
)

// Node is one vertex of a parsed expression. Eval never panics; undefined
// operations yield NaN or ±Inf under IEEE-754.
type Node interface {
	Eval(x float64) float64
	String() string
}

// Num is a numeric literal.
type Num struct {
	Value float64
}

func (n Num) Eval(float64) float64 { return n.Value }

func (n Num) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// Var is the integration variable x.
type Var struct{}

func (Var) Eval(x float64) float64 { return x }

func (Var) String() string { return "x" }

// Const is a named constant from the math namespace.
type Const struct {
	Name  string
	Value float64
}

func (c Const) Eval(float64) float64 { return c.Value }

func (c Const) String() string { return "math." + c.Name }

// Neg is unary minus.
type Neg struct {
	Arg Node
}

func (n Neg) Eval(x float64) float64 { return -n.Arg.Eval(x) }

func (n Neg) String() string { return "(-" + n.Arg.String() + ")" }

// Binary is one of + - * /.
type Binary struct {
	Op    byte
	Left  Node
	Right Node
}

func (b Binary) Eval(x float64) float64 {
	l, r := b.Left.Eval(x), b.Right.Eval(x)
	switch b.Op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	}
	return math.NaN()
}

func (b Binary) String() string {
	return "(" + b.Left.String() + " " + string(b.Op) + " " + b.Right.String() + ")"
}

// Pow is exponentiation. It is right-associative: 2**3**2 is 2**(3**2).
type Pow struct {
	Base Node
	Exp  Node
}

func (p Pow) Eval(x float64) float64 { return math.Pow(p.Base.Eval(x), p.Exp.Eval(x)) }

func (p Pow) String() string { return "(" + p.Base.String() + " ** " + p.Exp.String() + ")" }

// Call applies a function from the table.
type Call struct {
	Fn   *Func
	Args []Node
}

func (c Call) Eval(x float64) float64 {
	if len(c.Args) == 1 {
		return c.Fn.Apply([]float64{c.Args[0].Eval(x)})
	}
	vals := make([]float64, len(c.Args))
	for i, a := range c.Args {
		vals[i] = a.Eval(x)
	}
	return c.Fn.Apply(vals)
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return "math." + c.Fn.Name + "(" + strings.Join(args, ", ") + ")"
}

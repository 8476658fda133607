package expr

import (
	"math"
	"sort"
)

// Func is an entry of the function table. Arguments are checked against
// MinArgs/MaxArgs at parse time, so Apply always receives a valid count.
type Func struct {
	Name    string
	MinArgs int
	MaxArgs int // negative means unbounded

	unary func(float64) float64
	apply func(args []float64) float64
}

// Apply evaluates the function.
func (f *Func) Apply(args []float64) float64 {
	if f.unary != nil {
		return f.unary(args[0])
	}
	return f.apply(args)
}

func (f *Func) accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs < 0 || n <= f.MaxArgs)
}

func unary(name string, fn func(float64) float64) *Func {
	return &Func{Name: name, MinArgs: 1, MaxArgs: 1, unary: fn}
}

func binary(name string, fn func(a, b float64) float64) *Func {
	return &Func{Name: name, MinArgs: 2, MaxArgs: 2, apply: func(args []float64) float64 {
		return fn(args[0], args[1])
	}}
}

func variadic(name string, fold func(a, b float64) float64) *Func {
	return &Func{Name: name, MinArgs: 1, MaxArgs: -1, apply: func(args []float64) float64 {
		acc := args[0]
		for _, v := range args[1:] {
			acc = fold(acc, v)
		}
		return acc
	}}
}

// functions is the math namespace. Qualified names (math.sin) resolve here
// and nowhere else.
var functions = buildTable(
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("sec", func(x float64) float64 { return 1 / math.Cos(x) }),
	unary("csc", func(x float64) float64 { return 1 / math.Sin(x) }),
	unary("cot", func(x float64) float64 { return math.Cos(x) / math.Sin(x) }),
	unary("asin", math.Asin),
	unary("acos", math.Acos),
	unary("atan", math.Atan),
	binary("atan2", math.Atan2),
	unary("sinh", math.Sinh),
	unary("cosh", math.Cosh),
	unary("tanh", math.Tanh),
	unary("asinh", math.Asinh),
	unary("acosh", math.Acosh),
	unary("atanh", math.Atanh),
	unary("exp", math.Exp),
	unary("expm1", math.Expm1),
	unary("ln", math.Log),
	unary("log10", math.Log10),
	unary("log2", math.Log2),
	unary("log1p", math.Log1p),
	unary("sqrt", math.Sqrt),
	unary("cbrt", math.Cbrt),
	unary("abs", math.Abs),
	unary("sign", sign),
	unary("ceil", math.Ceil),
	unary("floor", math.Floor),
	unary("round", roundHalfUp),
	unary("trunc", math.Trunc),
	variadic("max", math.Max),
	variadic("min", math.Min),
	binary("pow", math.Pow),
	binary("root", nthRoot),
)

// constants resolves math.pi and math.e. Lookup is case-insensitive so that
// Math.PI and Math.E are accepted too.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func buildTable(fns ...*Func) map[string]*Func {
	m := make(map[string]*Func, len(fns))
	for _, f := range fns {
		m[f.Name] = f
	}
	return m
}

// LookupFunc returns the table entry for name.
func LookupFunc(name string) (*Func, bool) {
	f, ok := functions[name]
	return f, ok
}

// FuncNames returns every function name in the table, sorted.
func FuncNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nthRoot returns the real k-th root of x. A negative x has one only when
// k is an odd integer.
func nthRoot(x, k float64) float64 {
	if x < 0 && math.Abs(math.Mod(k, 2)) == 1 {
		return -math.Pow(-x, 1/k)
	}
	return math.Pow(x, 1/k)
}

// sign returns -1, +1, or x itself for ±0 and NaN.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf.
func roundHalfUp(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		r++
	}
	return r
}

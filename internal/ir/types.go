package ir

import (
	"math"
	"strings"
)

// Rule names a composite quadrature rule.
type Rule string

const (
	RuleTrapezoidal Rule = "trapezoidal"
	RuleSimpson13   Rule = "simpson13"
	RuleSimpson38   Rule = "simpson38"
	RuleBoole       Rule = "boole"
	RuleOpenSimpson Rule = "open_simpson"
)

// AllRules lists every rule in presentation order.
var AllRules = []Rule{
	RuleTrapezoidal,
	RuleSimpson13,
	RuleSimpson38,
	RuleBoole,
	RuleOpenSimpson,
}

// ruleAliases maps accepted spellings (lowercased) to canonical rule names.
// "simpson" and "simpsonabierto" are the legacy method keys of exercise files.
var ruleAliases = map[string]Rule{
	"trapezoidal":    RuleTrapezoidal,
	"trapezoid":      RuleTrapezoidal,
	"trap":           RuleTrapezoidal,
	"simpson13":      RuleSimpson13,
	"simpson1/3":     RuleSimpson13,
	"simpson_1_3":    RuleSimpson13,
	"simpson38":      RuleSimpson38,
	"simpson3/8":     RuleSimpson38,
	"simpson_3_8":    RuleSimpson38,
	"simpson":        RuleSimpson38,
	"boole":          RuleBoole,
	"open_simpson":   RuleOpenSimpson,
	"open-simpson":   RuleOpenSimpson,
	"opensimpson":    RuleOpenSimpson,
	"simpsonabierto": RuleOpenSimpson,
}

// ParseRule resolves a user-supplied rule name. Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseRule(s string) (Rule, bool) {
	r, ok := ruleAliases[strings.ToLower(strings.TrimSpace(s))]
	return r, ok
}

func (r Rule) String() string { return string(r) }

// Request is a single quadrature request: integrate Formula over [A, B]
// using N equal subintervals.
type Request struct {
	Formula string  `json:"func_str"`
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	N       int     `json:"n"`
}

// Step returns the subinterval width h = (B-A)/N.
func (r Request) Step() float64 {
	return (r.B - r.A) / float64(r.N)
}

// Sample is one evaluated node of the partition.
type Sample struct {
	X float64
	Y float64
}

// Finite reports whether the sampled value is a finite number.
func (s Sample) Finite() bool {
	return IsFinite(s.Y)
}

// Result is the output of one quadrature computation. Iterations is the
// complete, ordered evidence trail for Integral.
type Result struct {
	Integral   float64
	Iterations []Sample
}

// Finite reports whether the integral is a finite number. A non-finite
// integral means the formula is undefined somewhere on the sampled nodes.
func (r Result) Finite() bool {
	return IsFinite(r.Integral)
}

// NonFinite returns the trace indices whose sampled value is NaN or ±Inf.
func (r Result) NonFinite() []int {
	var idx []int
	for i, s := range r.Iterations {
		if !s.Finite() {
			idx = append(idx, i)
		}
	}
	return idx
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package quadrature

import (
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// Rule is one composite quadrature rule.
type Rule struct {
	// Name is the canonical rule name.
	Name ir.Rule

	// Title is the display name.
	Title string

	// Multiple is the panel size: n must be a positive multiple of it.
	Multiple int

	// Open rules never sample the endpoints.
	Open bool

	// Degree is the highest polynomial degree the closed rule integrates
	// exactly. It is -1 for open rules.
	Degree int

	// Pattern describes the weights for display.
	Pattern string

	scale  float64
	weight func(i, n int) float64
}

// Scale returns the factor applied to the weighted sum for step h.
func (r Rule) Scale(h float64) float64 { return r.scale * h }

// Weight returns the weight of node i in a partition of n subintervals.
func (r Rule) Weight(i, n int) float64 { return r.weight(i, n) }

// Validate checks n against the rule's positivity and divisibility
// requirements.
func (r Rule) Validate(n int) error {
	if n <= 0 {
		return newNotPositiveError(r, n)
	}
	if n%r.Multiple != 0 {
		return newNotDivisibleError(r, n)
	}
	return nil
}

// Nodes returns the first and last sampled node index for n subintervals.
func (r Rule) Nodes(n int) (first, last int) {
	if r.Open {
		return 1, n - 1
	}
	return 0, n
}

// ScaleFactor returns the constant c in Scale(h) = c·h.
func (r Rule) ScaleFactor() float64 { return r.scale }

func (r Rule) requirement() string {
	switch r.Multiple {
	case 1:
		return "a positive integer"
	case 2:
		return "a positive even number (multiple of 2)"
	}
	return fmt.Sprintf("a positive multiple of %d", r.Multiple)
}

var rules = []Rule{
	{
		Name:     ir.RuleTrapezoidal,
		Title:    "Trapezoidal",
		Multiple: 1,
		Degree:   1,
		Pattern:  "1 2 2 ... 2 1",
		scale:    1.0 / 2,
		weight: func(i, n int) float64 {
			if i == 0 || i == n {
				return 1
			}
			return 2
		},
	},
	{
		Name:     ir.RuleSimpson13,
		Title:    "Simpson 1/3",
		Multiple: 2,
		Degree:   3,
		Pattern:  "1 4 2 4 ... 2 4 1",
		scale:    1.0 / 3,
		weight: func(i, n int) float64 {
			switch {
			case i == 0 || i == n:
				return 1
			case i%2 == 1:
				return 4
			}
			return 2
		},
	},
	{
		Name:     ir.RuleSimpson38,
		Title:    "Simpson 3/8",
		Multiple: 3,
		Degree:   3,
		Pattern:  "1 3 3 2 3 3 ... 2 3 3 1",
		scale:    3.0 / 8,
		weight: func(i, n int) float64 {
			switch {
			case i == 0 || i == n:
				return 1
			case i%3 == 0:
				return 2
			}
			return 3
		},
	},
	{
		Name:     ir.RuleBoole,
		Title:    "Boole",
		Multiple: 4,
		Degree:   5,
		Pattern:  "7 32 12 32 14 32 12 32 ... 14 32 12 32 7",
		scale:    2.0 / 45,
		weight: func(i, n int) float64 {
			switch {
			case i == 0 || i == n:
				return 7
			case i%2 == 1:
				return 32
			case i%4 == 2:
				return 12
			}
			return 14
		},
	},
	{
		Name:     ir.RuleOpenSimpson,
		Title:    "Open Simpson",
		Multiple: 2,
		Open:     true,
		Degree:   -1,
		Pattern:  "4 2 4 ... 2 4 (endpoints not sampled)",
		scale:    1.0 / 3,
		weight: func(i, n int) float64 {
			if i%2 == 1 {
				return 4
			}
			return 2
		},
	},
}

var rulesByName = func() map[ir.Rule]Rule {
	m := make(map[ir.Rule]Rule, len(rules))
	for _, r := range rules {
		m[r.Name] = r
	}
	return m
}()

// Lookup returns the rule with the given canonical name.
func Lookup(name ir.Rule) (Rule, error) {
	r, ok := rulesByName[name]
	if !ok {
		return Rule{}, newUnknownRuleError(name)
	}
	return r, nil
}

// Rules returns every rule in presentation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

package quadrature

import (
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// Integrate recomputes the integral from a recorded trace. It is the check
// that a stored or reported result is consistent with its samples:
// Integrate(res.Iterations, rule, n, a, b) == res.Integral bit for bit.
func Integrate(samples []ir.Sample, name ir.Rule, n int, a, b float64) (float64, error) {
	rule, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	if err := rule.Validate(n); err != nil {
		return 0, err
	}
	first, last := rule.Nodes(n)
	if want := last - first + 1; len(samples) != want {
		return 0, fmt.Errorf("%s with n=%d needs %d samples, trace has %d", name, n, want, len(samples))
	}

	var sum float64
	for k, s := range samples {
		sum += rule.Weight(first+k, n) * s.Y
	}
	return rule.Scale((b-a)/float64(n)) * sum, nil
}

// Weights returns the weight of every sampled node for n subintervals, in
// trace order.
func (r Rule) Weights(n int) []float64 {
	first, last := r.Nodes(n)
	if last < first {
		return nil
	}
	w := make([]float64, 0, last-first+1)
	for i := first; i <= last; i++ {
		w = append(w, r.Weight(i, n))
	}
	return w
}

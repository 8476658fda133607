package harness

import (
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// CaseResult is the outcome of one scenario case.
type CaseResult struct {
	Name      string      `json:"name"`
	Rule      ir.Rule     `json:"rule"`
	Request   ir.Request  `json:"request"`
	RequestID string      `json:"request_id"`
	Pass      bool        `json:"pass"`
	Errors    []string    `json:"errors,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
	Integral  float64     `json:"integral"`
	Samples   []ir.Sample `json:"samples,omitempty"`
	TraceHash string      `json:"trace_hash,omitempty"`
	RunID     string      `json:"run_id,omitempty"`
	Seq       int64       `json:"seq,omitempty"`
}

// addError records a failed expectation for the case.
func (c *CaseResult) addError(format string, args ...any) {
	c.Errors = append(c.Errors, fmt.Sprintf(format, args...))
	c.Pass = false
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every case and every assertion passed.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages, prefixed with the case name.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Case returns the result of the named case, or nil.
func (r *Result) Case(name string) *CaseResult {
	for i := range r.Cases {
		if r.Cases[i].Name == name {
			return &r.Cases[i]
		}
	}
	return nil
}

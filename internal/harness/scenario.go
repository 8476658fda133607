package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quadra/internal/exercise"
	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Exercises is an optional CUE exercise file or directory. Cases may
	// refer to its exercises by id. Relative paths are resolved against the
	// scenario file's directory.
	Exercises string `yaml:"exercises,omitempty"`

	// Workers sets the engine's sampling concurrency. Zero means serial.
	Workers int `yaml:"workers,omitempty"`

	// Cases are executed in order.
	Cases []Case `yaml:"cases"`

	// Assertions relate cases to each other.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case is one integration request with its expected outcome.
type Case struct {
	Name string `yaml:"name"`

	// Exercise names an exercise whose fields fill in anything the case
	// leaves unset.
	Exercise string `yaml:"exercise,omitempty"`

	Formula string `yaml:"formula,omitempty"`
	A       *Bound `yaml:"a,omitempty"`
	B       *Bound `yaml:"b,omitempty"`
	N       *int   `yaml:"n,omitempty"`
	Rule    string `yaml:"rule,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect specifies what a case must produce. Unset fields are not checked.
type Expect struct {
	Integral           *float64 `yaml:"integral,omitempty"`
	Tolerance          *float64 `yaml:"tolerance,omitempty"`
	RelTolerance       float64  `yaml:"rel_tolerance,omitempty"`
	Error              string   `yaml:"error,omitempty"`
	NonFinite          *bool    `yaml:"nonfinite,omitempty"`
	Samples            *int     `yaml:"samples,omitempty"`
	ReferenceTolerance *float64 `yaml:"reference_tolerance,omitempty"`
}

// DefaultTolerance is the absolute tolerance used when an expected integral
// is given without one.
const DefaultTolerance = 1e-9

// tolerance returns the absolute tolerance for integral checks.
func (e Expect) tolerance() float64 {
	if e.Tolerance != nil {
		return *e.Tolerance
	}
	return DefaultTolerance
}

// Bound is an interval endpoint. YAML numbers (including .inf and .nan)
// decode directly; strings are formulas evaluated as constants.
type Bound struct {
	Value float64
	Text  string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bound must be a number or formula string", node.Line)
	}
	if tag := node.ShortTag(); tag == "!!int" || tag == "!!float" {
		return node.Decode(&b.Value)
	}
	prog, err := expr.Parse(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: bound %q: %w", node.Line, node.Value, err)
	}
	b.Text = node.Value
	b.Value = prog.Eval(0)
	return nil
}

// Assertion relates several cases of one scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "same_trace": cases produce bit-identical traces
	// - "distinct_trace": cases produce pairwise different traces
	// - "same_request": cases share a request id
	Type string `yaml:"type"`

	// Cases names the cases the assertion applies to.
	Cases []string `yaml:"cases"`
}

// Assertion type constants.
const (
	AssertSameTrace     = "same_trace"
	AssertDistinctTrace = "distinct_trace"
	AssertSameRequest   = "same_request"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative exercises path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Exercises != "" && !filepath.IsAbs(scenario.Exercises) {
		scenario.Exercises = filepath.Join(filepath.Dir(path), scenario.Exercises)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and internal consistency.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Cases) == 0 {
		return fmt.Errorf("at least one case is required")
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}

	names := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if err := validateCase(c, i, s.Exercises != ""); err != nil {
			return err
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i, names); err != nil {
			return err
		}
	}
	return nil
}

func validateCase(c *Case, index int, haveExercises bool) error {
	if c.Name == "" {
		return fmt.Errorf("cases[%d]: name is required", index)
	}
	if c.Exercise != "" {
		if !haveExercises {
			return fmt.Errorf("cases[%d]: exercise %q given but the scenario has no exercises", index, c.Exercise)
		}
	} else {
		switch {
		case c.Formula == "":
			return fmt.Errorf("cases[%d]: formula is required", index)
		case c.A == nil || c.B == nil:
			return fmt.Errorf("cases[%d]: a and b are required", index)
		case c.N == nil:
			return fmt.Errorf("cases[%d]: n is required", index)
		case c.Rule == "":
			return fmt.Errorf("cases[%d]: rule is required", index)
		}
	}

	e := c.Expect
	if e.Error != "" {
		if !knownErrorCode(e.Error) {
			return fmt.Errorf("cases[%d]: unknown error code %q", index, e.Error)
		}
		if e.Integral != nil || e.NonFinite != nil || e.Samples != nil || e.ReferenceTolerance != nil {
			return fmt.Errorf("cases[%d]: error cannot be combined with result expectations", index)
		}
	}
	if e.Tolerance != nil && *e.Tolerance < 0 {
		return fmt.Errorf("cases[%d]: tolerance must be non-negative", index)
	}
	if e.RelTolerance < 0 {
		return fmt.Errorf("cases[%d]: rel_tolerance must be non-negative", index)
	}
	return nil
}

func knownErrorCode(code string) bool {
	switch quadrature.RequestErrorCode(code) {
	case quadrature.ErrCodeNotPositive,
		quadrature.ErrCodeNotDivisible,
		quadrature.ErrCodeUnknownRule,
		quadrature.ErrCodeInvalidBounds:
		return true
	}
	return false
}

func validateAssertion(a Assertion, index int, names map[string]bool) error {
	switch a.Type {
	case AssertSameTrace, AssertDistinctTrace, AssertSameRequest:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if len(a.Cases) < 2 {
		return fmt.Errorf("assertions[%d]: %s needs at least two cases", index, a.Type)
	}
	for _, name := range a.Cases {
		if !names[name] {
			return fmt.Errorf("assertions[%d]: unknown case %q", index, name)
		}
	}
	return nil
}

// resolve returns the rule and request of the case, filling unset fields
// from ex when the case names an exercise.
func (c Case) resolve(ex *exercise.Exercise) (ir.Rule, ir.Request) {
	var (
		req  ir.Request
		rule string
	)
	if ex != nil {
		req = ex.Request()
		rule = string(ex.Rule)
	}
	if c.Formula != "" {
		req.Formula = c.Formula
	}
	if c.A != nil {
		req.A = c.A.Value
	}
	if c.B != nil {
		req.B = c.B.Value
	}
	if c.N != nil {
		req.N = *c.N
	}
	if c.Rule != "" {
		rule = c.Rule
	}

	if r, ok := ir.ParseRule(rule); ok {
		return r, req
	}
	// Left unresolved so the engine reports UNKNOWN_RULE.
	return ir.Rule(rule), req
}

package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/quadra/internal/ir"
)

// Run is one completed calculation as recorded in the ledger.
type Run struct {
	ID            string
	RequestID     string
	Rule          ir.Rule
	Request       ir.Request
	Integral      float64
	Samples       []ir.Sample
	TraceHash     string
	Seq           int64
	EngineVersion string
	IRVersion     string
}

// Result returns the run's integral and samples as an ir.Result.
func (r Run) Result() ir.Result {
	return ir.Result{Integral: r.Integral, Iterations: r.Samples}
}

// Finite reports whether the recorded integral is a finite number.
func (r Run) Finite() bool {
	return ir.IsFinite(r.Integral)
}

// IDGenerator produces run identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewRun builds a ledger entry for a computed result. Seq is left zero so
// WriteRun assigns the next position.
func NewRun(id string, rule ir.Rule, req ir.Request, res ir.Result) (Run, error) {
	requestID, err := ir.RequestID(rule, req)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	traceHash, err := ir.TraceHash(res)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	samples := res.Iterations
	if samples == nil {
		samples = []ir.Sample{}
	}
	return Run{
		ID:            id,
		RequestID:     requestID,
		Rule:          rule,
		Request:       req,
		Integral:      res.Integral,
		Samples:       samples,
		TraceHash:     traceHash,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, nil
}

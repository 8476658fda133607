package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/quadra/internal/exercise"
	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
	"github.com/roach88/quadra/internal/store"
	"github.com/roach88/quadra/internal/testutil"
)

// Harness is the test execution engine.
// It runs scenarios with a deterministic clock and run ids.
type Harness struct {
	engine    *quadrature.Engine
	store     *store.Store
	clock     *testutil.DeterministicClock
	ids       *testutil.SequentialIDs
	logger    *slog.Logger
	exercises map[string]exercise.Exercise
}

// Option configures a harness run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger for harness and engine diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Run executes a test scenario and returns the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory ledger for isolation.
//
// Execution flow:
// 1. Load the scenario's exercise set, if any
// 2. Compute every case and check its expectations
// 3. Record each computed case in the ledger and read it back
// 4. Evaluate cross-case assertions
//
// The returned error covers harness failures only; failed expectations are
// reported through Result.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	workers := scenario.Workers
	if workers < 1 {
		workers = 1
	}
	h := &Harness{
		engine: quadrature.New(
			quadrature.WithWorkers(workers),
			quadrature.WithLogger(o.logger),
		),
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		ids:    testutil.NewSequentialIDs("run"),
		logger: o.logger,
	}

	if scenario.Exercises != "" {
		exs, err := exercise.Load(scenario.Exercises)
		if err != nil {
			return nil, fmt.Errorf("failed to load exercises: %w", err)
		}
		h.exercises = make(map[string]exercise.Exercise, len(exs))
		for _, ex := range exs {
			h.exercises[ex.ID] = ex
		}
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, c.Name, err)
		}
		for _, msg := range cr.Errors {
			result.AddError(c.Name + ": " + msg)
		}
		result.Cases = append(result.Cases, cr)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"cases", len(result.Cases),
		"pass", result.Pass,
	)
	return result, nil
}

// runCase computes one case, records it, and checks its expectations.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	var ex *exercise.Exercise
	if c.Exercise != "" {
		found, ok := h.exercises[c.Exercise]
		if !ok {
			return CaseResult{}, fmt.Errorf("unknown exercise %q", c.Exercise)
		}
		ex = &found
	}
	rule, req := c.resolve(ex)

	cr := CaseResult{
		Name:    c.Name,
		Rule:    rule,
		Request: req,
		Pass:    true,
	}
	requestID, err := ir.RequestID(rule, req)
	if err != nil {
		return cr, err
	}
	cr.RequestID = requestID

	res, err := h.engine.Compute(ctx, rule, req)
	if err != nil {
		var reqErr *quadrature.RequestError
		if !errors.As(err, &reqErr) {
			return cr, err
		}
		cr.ErrorCode = string(reqErr.Code)
		checkRejected(c.Expect, &cr, reqErr)
		return cr, nil
	}

	run, err := h.record(ctx, rule, req, *res)
	if err != nil {
		return cr, err
	}
	cr.RunID = run.ID
	cr.Seq = run.Seq
	cr.Integral = run.Integral
	cr.Samples = run.Samples
	cr.TraceHash = run.TraceHash

	if hash, err := ir.TraceHash(run.Result()); err != nil {
		return cr, err
	} else if hash != run.TraceHash {
		cr.addError("ledger round trip changed the trace: %s != %s", hash, run.TraceHash)
	}

	reference := func() float64 {
		return quadrature.Reference(expr.Compile(req.Formula), req.A, req.B)
	}
	checkComputed(c.Expect, &cr, reference)
	return cr, nil
}

// record writes the computed run to the ledger and returns it as read back.
func (h *Harness) record(ctx context.Context, rule ir.Rule, req ir.Request, res ir.Result) (store.Run, error) {
	run, err := store.NewRun(h.ids.Generate(), rule, req, res)
	if err != nil {
		return store.Run{}, err
	}
	run.Seq = h.clock.Next()
	if err := h.store.WriteRun(ctx, run); err != nil {
		return store.Run{}, err
	}
	return h.store.ReadRun(ctx, run.ID)
}

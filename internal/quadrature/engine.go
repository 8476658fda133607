package quadrature

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
)

// DefaultParallelThreshold is the smallest node count sampled concurrently.
const DefaultParallelThreshold = 512

// Engine computes quadrature requests. An Engine holds no per-request state
// and is safe for concurrent use.
type Engine struct {
	compiler  *expr.Compiler
	workers   int
	threshold int
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithWorkers sets how many goroutines sample one request. Values below 1
// mean serial sampling.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithParallelThreshold sets the node count at which sampling goes
// concurrent. Default: DefaultParallelThreshold.
func WithParallelThreshold(n int) EngineOption {
	return func(e *Engine) {
		e.threshold = n
	}
}

// WithCompiler sets the compiler used to turn formulas into evaluators.
func WithCompiler(c *expr.Compiler) EngineOption {
	return func(e *Engine) {
		e.compiler = c
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine. Without options it samples serially with the
// shared expression compiler.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		compiler:  expr.Default(),
		workers:   1,
		threshold: DefaultParallelThreshold,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the configured worker count.
func (e *Engine) Workers() int { return e.workers }

// Compute integrates req.Formula over [req.A, req.B] with the named rule.
//
// Request faults (unknown rule, bad n, non-finite bounds) return a
// *RequestError before anything is sampled. A malformed formula is not an
// error: it samples as NaN and yields a non-finite integral with a full
// trace.
func (e *Engine) Compute(ctx context.Context, name ir.Rule, req ir.Request) (*ir.Result, error) {
	rule, err := e.check(name, req)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, rule, e.compiler.Compile(req.Formula), req)
}

// ComputeFunc is Compute with a caller-supplied evaluator; req.Formula is
// ignored.
func (e *Engine) ComputeFunc(ctx context.Context, name ir.Rule, f expr.Evaluator, req ir.Request) (*ir.Result, error) {
	rule, err := e.check(name, req)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, rule, f, req)
}

func (e *Engine) check(name ir.Rule, req ir.Request) (Rule, error) {
	rule, err := Lookup(name)
	if err != nil {
		return Rule{}, err
	}
	if err := rule.Validate(req.N); err != nil {
		return Rule{}, err
	}
	if !ir.IsFinite(req.A) || !ir.IsFinite(req.B) {
		return Rule{}, newInvalidBoundsError(name, req)
	}
	return rule, nil
}

func (e *Engine) run(ctx context.Context, rule Rule, f expr.Evaluator, req ir.Request) (*ir.Result, error) {
	first, last := rule.Nodes(req.N)
	samples := make([]ir.Sample, last-first+1)

	workers := e.workers
	if len(samples) < e.threshold {
		workers = 1
	}
	e.logger.Debug("compute",
		"rule", rule.Name,
		"n", req.N,
		"a", req.A,
		"b", req.B,
		"nodes", len(samples),
		"workers", workers,
	)

	if err := sample(ctx, f, req, first, samples, workers); err != nil {
		return nil, fmt.Errorf("%s: %w", rule.Name, err)
	}

	// Summation runs in increasing index order whatever the sampling order.
	var sum float64
	for k, s := range samples {
		sum += rule.Weight(first+k, req.N) * s.Y
	}
	res := &ir.Result{
		Integral:   rule.Scale(req.Step()) * sum,
		Iterations: samples,
	}

	if bad := res.NonFinite(); len(bad) > 0 {
		s := samples[bad[0]]
		e.logger.Warn("non-finite samples",
			"rule", rule.Name,
			"formula", req.Formula,
			"count", len(bad),
			"first_index", first+bad[0],
			"first_x", s.X,
			"first_y", ir.FormatFloat(s.Y),
		)
	}
	return res, nil
}

// node returns x_i = a + i·h, with x_0 = a and x_n = b exactly.
func node(req ir.Request, h float64, i int) float64 {
	switch i {
	case 0:
		return req.A
	case req.N:
		return req.B
	}
	return req.A + float64(i)*h
}

// sample fills out[k] with node first+k. With workers > 1 the index range
// is split into contiguous chunks evaluated through an errgroup.
func sample(ctx context.Context, f expr.Evaluator, req ir.Request, first int, out []ir.Sample, workers int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h := req.Step()
	fill := func(lo, hi int) {
		for k := lo; k < hi; k++ {
			x := node(req, h, first+k)
			out[k] = ir.Sample{X: x, Y: f(x)}
		}
	}

	if workers <= 1 {
		fill(0, len(out))
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	chunk := (len(out) + workers - 1) / workers
	for lo := 0; lo < len(out); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(out))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fill(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

var defaultEngine = New()

// Compute integrates with the default serial engine.
func Compute(name ir.Rule, req ir.Request) (*ir.Result, error) {
	return defaultEngine.Compute(context.Background(), name, req)
}

// Trapezoidal applies the composite trapezoidal rule.
func Trapezoidal(req ir.Request) (*ir.Result, error) { return Compute(ir.RuleTrapezoidal, req) }

// Simpson13 applies composite Simpson 1/3.
func Simpson13(req ir.Request) (*ir.Result, error) { return Compute(ir.RuleSimpson13, req) }

// Simpson38 applies composite Simpson 3/8.
func Simpson38(req ir.Request) (*ir.Result, error) { return Compute(ir.RuleSimpson38, req) }

// Boole applies composite Boole.
func Boole(req ir.Request) (*ir.Result, error) { return Compute(ir.RuleBoole, req) }

// OpenSimpson applies the open Simpson rule.
func OpenSimpson(req ir.Request) (*ir.Result, error) { return Compute(ir.RuleOpenSimpson, req) }

package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
	"github.com/roach88/quadra/internal/store"
)

// IntegrateOptions holds flags for the integrate command.
type IntegrateOptions struct {
	*RootOptions
	Rule      string
	A         string
	B         string
	N         int
	Reference bool
	Database  string
	Strict    bool

	// IDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs store.IDGenerator
}

// IntegrateResult is the payload of the integrate command.
type IntegrateResult struct {
	Rule       ir.Rule  `json:"rule"`
	Title      string   `json:"title"`
	Formula    string   `json:"formula"`
	Normalized string   `json:"normalized"`
	A          Float    `json:"a"`
	B          Float    `json:"b"`
	N          int      `json:"n"`
	Step       Float    `json:"h"`
	Integral   Float    `json:"integral"`
	Finite     bool     `json:"finite"`
	NonFinite  []int    `json:"nonfinite_indices,omitempty"`
	Iterations []Sample `json:"iterations"`
	Reference  *Float   `json:"reference,omitempty"`
	AbsError   *Float   `json:"abs_error,omitempty"`
	RequestID  string   `json:"request_id"`
	RunID      string   `json:"run_id,omitempty"`
}

// Sample is one row of the node table. I is the partition index of X.
type Sample struct {
	I int   `json:"i"`
	X Float `json:"x"`
	Y Float `json:"y"`
}

// newSamples numbers a trace starting at partition index first.
func newSamples(first int, trace []ir.Sample) []Sample {
	out := make([]Sample, len(trace))
	for k, s := range trace {
		out[k] = Sample{I: first + k, X: Float(s.X), Y: Float(s.Y)}
	}
	return out
}

// NewIntegrateCommand creates the integrate command.
func NewIntegrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IntegrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "integrate <formula>",
		Short: "Approximate a definite integral",
		Long: `Approximate the integral of a formula in x over [a, b] with a composite
Newton-Cotes rule and print the sampled nodes.

Bounds may be formulas: --b pi/2. A formula that does not parse evaluates
to NaN everywhere. A non-finite result means the function is undefined
somewhere on the sampled nodes.

Exit codes:
  0 - Integral computed
  1 - Integral is not finite and --strict was given
  2 - Request rejected (unknown rule, n not admissible, bad bounds)

Examples:
  quadra integrate "sin(x)" --a 0 --b pi --n 12 --rule simpson13
  quadra integrate "x^3 - 2x" --a -1 --b 2 --n 12 --rule simpson38 --reference
  quadra integrate "1/x" --a 0 --b 1 --n 4 --rule boole --strict --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegrate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Rule, "rule", "r", string(ir.RuleSimpson13), "quadrature rule (see 'quadra rules')")
	cmd.Flags().StringVar(&opts.A, "a", "0", "lower bound (number or formula)")
	cmd.Flags().StringVar(&opts.B, "b", "1", "upper bound (number or formula)")
	cmd.Flags().IntVarP(&opts.N, "n", "n", 12, "number of subintervals")
	cmd.Flags().BoolVar(&opts.Reference, "reference", false, "compare with a Gauss-Legendre reference value")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite ledger")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when the integral is not finite")

	return cmd
}

func runIntegrate(opts *IntegrateOptions, formula string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	a, err := parseBound("a", opts.A)
	if err != nil {
		return argumentError(formatter, err)
	}
	b, err := parseBound("b", opts.B)
	if err != nil {
		return argumentError(formatter, err)
	}

	rule := resolveRule(opts.Rule)
	req := ir.Request{Formula: formula, A: a, B: b, N: opts.N}

	normalized := expr.Normalize(formula)
	if _, perr := expr.Parse(formula); perr != nil {
		logger.Warn("formula does not parse, every sample is NaN", "formula", formula, "error", perr)
	}
	formatter.VerboseLog("normalized: %s", normalized)

	res, err := newEngine(opts.RootOptions, logger).Compute(cmd.Context(), rule, req)
	if err != nil {
		return requestError(formatter, err)
	}

	r, _ := quadrature.Lookup(rule)
	first, _ := r.Nodes(req.N)
	out := IntegrateResult{
		Rule:       rule,
		Title:      r.Title,
		Formula:    formula,
		Normalized: normalized,
		A:          Float(a),
		B:          Float(b),
		N:          req.N,
		Step:       Float(req.Step()),
		Integral:   Float(res.Integral),
		Finite:     res.Finite(),
		NonFinite:  res.NonFinite(),
		Iterations: newSamples(first, res.Iterations),
		RequestID:  ir.MustRequestID(rule, req),
	}

	if opts.Reference {
		ref := quadrature.Reference(expr.Compile(formula), a, b)
		diff := quadrature.AbsError(res.Integral, ref)
		out.Reference = (*Float)(&ref)
		out.AbsError = (*Float)(&diff)
	}

	if path := opts.setting("db", opts.Database); path != "" {
		ids := opts.IDs
		if ids == nil {
			ids = store.UUIDv7Generator{}
		}
		runID, err := recordRun(cmd, path, ids, rule, req, *res)
		if err != nil {
			return databaseError(formatter, err)
		}
		out.RunID = runID
		logger.Debug("run recorded", "db", path, "run_id", runID)
	}

	var strictErr *ExitError
	resp := CLIResponse{Status: "ok", Data: out, RunID: out.RunID}
	if opts.Strict && !out.Finite {
		msg := fmt.Sprintf("integral is %s: %s", ir.FormatFloat(float64(out.Integral)), UndefinedNote)
		strictErr = NewExitError(ExitFailure, msg)
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    ErrCodeNonFinite,
			Message: msg,
			Details: map[string]any{"nonfinite_indices": out.NonFinite},
		}
	}

	if formatter.Format == "json" {
		if err := formatter.writeJSON(resp); err != nil {
			return err
		}
	} else {
		writeIntegrateText(formatter.Writer, out)
	}

	if strictErr != nil {
		return strictErr
	}
	return nil
}

// recordRun writes a computed result to the ledger at path.
func recordRun(cmd *cobra.Command, path string, ids store.IDGenerator, rule ir.Rule, req ir.Request, res ir.Result) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := store.NewRun(ids.Generate(), rule, req, res)
	if err != nil {
		return "", err
	}
	if err := st.WriteRun(cmd.Context(), run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func writeIntegrateText(w io.Writer, out IntegrateResult) {
	fmt.Fprintf(w, "%s rule, n = %d, h = %s\n", out.Title, out.N, ir.FormatFloat(float64(out.Step)))
	fmt.Fprintf(w, "f(x) = %s\n", out.Formula)
	fmt.Fprintf(w, "over [%s, %s]\n\n", ir.FormatFloat(float64(out.A)), ir.FormatFloat(float64(out.B)))

	writeSamples(w, out.Iterations)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Integral:  %s\n", formatValue(float64(out.Integral)))
	if out.Reference != nil {
		fmt.Fprintf(w, "Reference: %s (abs error %s)\n",
			formatValue(float64(*out.Reference)), ir.FormatFloat(float64(*out.AbsError)))
	}
	if len(out.NonFinite) > 0 {
		fmt.Fprintf(w, "Non-finite samples: %d\n", len(out.NonFinite))
	}
	if out.RunID != "" {
		fmt.Fprintf(w, "Run:       %s\n", out.RunID)
	}
}

// writeSamples prints the node table.
func writeSamples(w io.Writer, samples []Sample) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "i\tx\tf(x)\t")
	for _, s := range samples {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", s.I, ir.FormatFloat(float64(s.X)), ir.FormatFloat(float64(s.Y)))
	}
	tw.Flush()
}

// resolveRule maps a user-supplied rule name onto a canonical one. Unknown
// names are passed through so the engine reports them.
func resolveRule(name string) ir.Rule {
	if r, ok := ir.ParseRule(name); ok {
		return r
	}
	return ir.Rule(name)
}

// parseBound evaluates a bound given as a number or formula.
func parseBound(name, s string) (float64, error) {
	prog, err := expr.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("bound %s: %w", name, err)
	}
	if !prog.Constant() {
		return 0, fmt.Errorf("bound %s: %q depends on x", name, s)
	}
	return prog.Eval(0), nil
}

// requestError reports a rejected request. Validation errors exit 2 with
// their code.
func requestError(f *OutputFormatter, err error) error {
	var reqErr *quadrature.RequestError
	if errors.As(err, &reqErr) {
		details := map[string]any{"rule": reqErr.Rule, "n": reqErr.N}
		if outErr := f.Error(string(reqErr.Code), reqErr.Message, details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "request rejected", err)
	}
	if outErr := f.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "computation failed", err)
}

func argumentError(f *OutputFormatter, err error) error {
	if outErr := f.Error(ErrCodeArgument, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "invalid argument", err)
}

func databaseError(f *OutputFormatter, err error) error {
	if outErr := f.Error(ErrCodeDatabase, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "ledger error", err)
}

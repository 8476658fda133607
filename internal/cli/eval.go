package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quadra/internal/expr"
	"github.com/roach88/quadra/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	ShowNormalized bool
}

// EvalResult is the payload of the eval command.
type EvalResult struct {
	Formula    string      `json:"formula"`
	Normalized string      `json:"normalized,omitempty"`
	Valid      bool        `json:"valid"`
	Points     []EvalPoint `json:"points"`
}

// EvalPoint is f evaluated at one x.
type EvalPoint struct {
	X Float `json:"x"`
	Y Float `json:"y"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <formula> <x>...",
		Short: "Evaluate a formula at one or more points",
		Long: `Evaluate a formula in x at the given points. Each point may itself be a
constant formula such as pi/4. Evaluation never fails: values where the
function is undefined print as NaN or ±Inf.

Examples:
  quadra eval "sin(x)" 0 pi/2 pi
  quadra eval "2x + 3sin(x)" 1 --show-normalized
  quadra eval "1/x" 0 --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ShowNormalized, "show-normalized", false, "print the formula after normalization")

	return cmd
}

func runEval(opts *EvalOptions, formula string, points []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	out := EvalResult{
		Formula: formula,
		Valid:   expr.Validate(formula),
		Points:  make([]EvalPoint, 0, len(points)),
	}
	if opts.ShowNormalized {
		out.Normalized = expr.Normalize(formula)
	}

	f := expr.Compile(formula)
	for i, p := range points {
		x, err := parseBound(fmt.Sprintf("x[%d]", i), p)
		if err != nil {
			return argumentError(formatter, err)
		}
		out.Points = append(out.Points, EvalPoint{X: Float(x), Y: Float(f(x))})
	}

	if !out.Valid {
		formatter.VerboseLog("formula %q does not parse; every value is NaN", formula)
	}

	if formatter.Format == "json" {
		return formatter.writeJSON(CLIResponse{Status: "ok", Data: out})
	}

	w := formatter.Writer
	if out.Normalized != "" {
		fmt.Fprintf(w, "normalized: %s\n", out.Normalized)
	}
	for _, p := range out.Points {
		fmt.Fprintf(w, "f(%s) = %s\n", ir.FormatFloat(float64(p.X)), ir.FormatFloat(float64(p.Y)))
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quadra/internal/expr"
)

// ValidateResult is the payload of the validate command.
type ValidateResult struct {
	Formula    string `json:"formula"`
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized"`
	Tree       string `json:"tree,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <formula>",
		Short: "Check that a formula parses",
		Long: `Check that a formula parses without evaluating it.

Exit codes:
  0 - Formula is valid
  1 - Formula does not parse

Examples:
  quadra validate "3x^2 + sin^2(x)"
  quadra validate "sin(x" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, formula string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	out := ValidateResult{
		Formula:    formula,
		Normalized: expr.Normalize(formula),
	}
	formatter.VerboseLog("normalized: %s", out.Normalized)

	prog, err := expr.Parse(formula)
	if err != nil {
		details := map[string]any{"normalized": out.Normalized}
		var cerr *expr.CompileError
		if errors.As(err, &cerr) {
			details["offset"] = cerr.Offset
		}
		if outErr := formatter.Error(ErrCodeParse, err.Error(), details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "invalid formula", err)
	}

	out.Valid = true
	out.Tree = prog.String()

	if formatter.Format == "json" {
		return formatter.writeJSON(CLIResponse{Status: "ok", Data: out})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s\n", formula)
	fmt.Fprintf(formatter.Writer, "  parsed as %s\n", out.Tree)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/quadra/internal/exercise"
	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// IDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs store.IDGenerator
}

// ExerciseResult is one integrated exercise.
type ExerciseResult struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Formula   string  `json:"formula"`
	Rule      ir.Rule `json:"rule"`
	A         Float   `json:"a"`
	B         Float   `json:"b"`
	N         int     `json:"n"`
	Integral  Float   `json:"integral"`
	Finite    bool    `json:"finite"`
	Samples   int     `json:"samples"`
	RequestID string  `json:"request_id"`
	RunID     string  `json:"run_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [exercises]",
		Short: "Integrate every exercise in a set",
		Long: `Integrate every exercise of a CUE exercise set, given as a file or a
directory of .cue files. Without an argument the built-in exercises are
used.

Exit codes:
  0 - All exercises integrated
  2 - Exercise set could not be loaded, or the ledger could not be written

Examples:
  quadra run
  quadra run ./exercises/calculus.cue
  quadra run ./exercises --db runs.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runExercises(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record every run in this SQLite ledger")

	return cmd
}

func runExercises(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	exercises := exercise.Defaults()
	if path != "" {
		var err error
		exercises, err = exercise.Load(path)
		if err != nil {
			code := ErrCodeGeneric
			var loadErr *exercise.LoadError
			if errors.As(err, &loadErr) {
				code = loadErr.Code
			}
			if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "failed to load exercises", err)
		}
	}
	formatter.VerboseLog("loaded %d exercises", len(exercises))

	var ledger *store.Store
	if dbPath := opts.setting("db", opts.Database); dbPath != "" {
		var err error
		ledger, err = store.Open(dbPath)
		if err != nil {
			return databaseError(formatter, err)
		}
		defer ledger.Close()
	}
	ids := opts.IDs
	if ids == nil {
		ids = store.UUIDv7Generator{}
	}

	engine := newEngine(opts.RootOptions, logger)
	results := make([]ExerciseResult, 0, len(exercises))
	for _, ex := range exercises {
		req := ex.Request()
		res, err := engine.Compute(cmd.Context(), ex.Rule, req)
		if err != nil {
			return requestError(formatter, fmt.Errorf("exercise %s: %w", ex.ID, err))
		}

		er := ExerciseResult{
			ID:        ex.ID,
			Name:      ex.Name,
			Formula:   ex.Formula,
			Rule:      ex.Rule,
			A:         Float(ex.A),
			B:         Float(ex.B),
			N:         ex.N,
			Integral:  Float(res.Integral),
			Finite:    res.Finite(),
			Samples:   len(res.Iterations),
			RequestID: ir.MustRequestID(ex.Rule, req),
		}

		if ledger != nil {
			run, err := store.NewRun(ids.Generate(), ex.Rule, req, *res)
			if err != nil {
				return databaseError(formatter, err)
			}
			if err := ledger.WriteRun(cmd.Context(), run); err != nil {
				return databaseError(formatter, err)
			}
			er.RunID = run.ID
		}

		logger.Debug("exercise integrated", "id", ex.ID, "rule", ex.Rule, "integral", ir.FormatFloat(res.Integral))
		results = append(results, er)
	}

	if formatter.Format == "json" {
		return formatter.writeJSON(CLIResponse{Status: "ok", Data: results})
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRULE\tINTERVAL\tN\tINTEGRAL")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t[%s, %s]\t%d\t%s\n",
			r.ID, r.Name, r.Rule,
			ir.FormatFloat(float64(r.A)), ir.FormatFloat(float64(r.B)),
			r.N, formatValue(float64(r.Integral)))
	}
	return tw.Flush()
}

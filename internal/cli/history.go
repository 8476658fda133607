package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
	"github.com/roach88/quadra/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string
}

// HistoryEntry is one ledger row.
type HistoryEntry struct {
	Seq       int64    `json:"seq"`
	ID        string   `json:"id"`
	Rule      ir.Rule  `json:"rule"`
	Formula   string   `json:"formula"`
	A         Float    `json:"a"`
	B         Float    `json:"b"`
	N         int      `json:"n"`
	Integral  Float    `json:"integral"`
	RequestID string   `json:"request_id"`
	TraceHash string   `json:"trace_hash"`
	Samples   []Sample `json:"samples,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List the runs recorded in a SQLite ledger, newest first. With --id,
show one run together with its sampled nodes.

Examples:
  quadra history --db runs.db
  quadra history --db runs.db --limit 5 --format json
  quadra history --db runs.db --id 0192f0c4-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite ledger")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 lists all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	path := opts.setting("db", opts.Database)
	if path == "" {
		return argumentError(formatter, errors.New("--db (or QUADRA_DB) is required"))
	}

	ledger, err := store.Open(path)
	if err != nil {
		return databaseError(formatter, err)
	}
	defer ledger.Close()

	if opts.ID != "" {
		run, err := ledger.ReadRun(cmd.Context(), opts.ID)
		if errors.Is(err, store.ErrNotFound) {
			if outErr := formatter.Error(ErrCodeRunNotFound, err.Error(), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "run not found", err)
		}
		if err != nil {
			return databaseError(formatter, err)
		}
		return writeRunDetail(formatter, run)
	}

	runs, err := ledger.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return databaseError(formatter, err)
	}
	entries := make([]HistoryEntry, len(runs))
	for i, r := range runs {
		entries[i] = newHistoryEntry(r)
	}

	if formatter.Format == "json" {
		return formatter.writeJSON(CLIResponse{Status: "ok", Data: entries})
	}
	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tRULE\tFORMULA\tINTERVAL\tN\tINTEGRAL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t[%s, %s]\t%d\t%s\n",
			e.Seq, e.ID, e.Rule, e.Formula,
			ir.FormatFloat(float64(e.A)), ir.FormatFloat(float64(e.B)),
			e.N, ir.FormatFloat(float64(e.Integral)))
	}
	return tw.Flush()
}

func newHistoryEntry(r store.Run) HistoryEntry {
	return HistoryEntry{
		Seq:       r.Seq,
		ID:        r.ID,
		Rule:      r.Rule,
		Formula:   r.Request.Formula,
		A:         Float(r.Request.A),
		B:         Float(r.Request.B),
		N:         r.Request.N,
		Integral:  Float(r.Integral),
		RequestID: r.RequestID,
		TraceHash: r.TraceHash,
	}
}

// writeRunDetail prints one run with its node table.
func writeRunDetail(f *OutputFormatter, run store.Run) error {
	entry := newHistoryEntry(run)
	first := 0
	if r, err := quadrature.Lookup(run.Rule); err == nil {
		first, _ = r.Nodes(run.Request.N)
	}
	entry.Samples = newSamples(first, run.Samples)

	if f.Format == "json" {
		return f.writeJSON(CLIResponse{Status: "ok", Data: entry, RunID: run.ID})
	}

	w := f.Writer
	fmt.Fprintf(w, "Run %s (seq %d)\n", entry.ID, entry.Seq)
	fmt.Fprintf(w, "%s over [%s, %s], n = %d, rule %s\n\n",
		entry.Formula, ir.FormatFloat(float64(entry.A)), ir.FormatFloat(float64(entry.B)), entry.N, entry.Rule)
	writeSamples(w, entry.Samples)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Integral:  %s\n", formatValue(float64(entry.Integral)))
	fmt.Fprintf(w, "Request:   %s\n", entry.RequestID)
	fmt.Fprintf(w, "Trace:     %s\n", entry.TraceHash)
	return nil
}

package cli

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
	"github.com/roach88/quadra/internal/store"
)

// seedLedger writes one run per request and returns the ledger path.
func seedLedger(t *testing.T, reqs ...ir.Request) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	for i, req := range reqs {
		res, err := quadrature.Trapezoidal(req)
		require.NoError(t, err)
		run, err := store.NewRun(fmtRunID(i+1), ir.RuleTrapezoidal, req, *res)
		require.NoError(t, err)
		require.NoError(t, st.WriteRun(t.Context(), run))
	}
	return path
}

func fmtRunID(n int) string {
	return fmt.Sprintf("run-%d", n)
}

func TestHistoryList(t *testing.T) {
	db := seedLedger(t,
		ir.Request{Formula: "x", A: 0, B: 1, N: 2},
		ir.Request{Formula: "x^2", A: 0, B: 2, N: 4},
		ir.Request{Formula: "1/x", A: 0, B: 1, N: 2},
	)

	out, _, err := execute(t, NewHistoryCommand(jsonOpts()), "--db", db)
	require.NoError(t, err)

	entries := decode[[]HistoryEntry](t, out).Data
	require.Len(t, entries, 3)
	assert.Equal(t, "run-3", entries[0].ID)
	assert.Equal(t, int64(3), entries[0].Seq)
	assert.Equal(t, "1/x", entries[0].Formula)
	assert.Equal(t, "run-1", entries[2].ID)
	assert.Equal(t, Float(0.5), entries[2].Integral)
	assert.Empty(t, entries[0].Samples, "listings omit samples")

	out, _, err = execute(t, NewHistoryCommand(textOpts()), "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "SEQ")
	assert.Contains(t, out, "run-3")
	assert.Contains(t, out, "+Inf")
	assert.NotContains(t, out, "run-2")
}

func TestHistoryEmptyLedger(t *testing.T) {
	db := seedLedger(t)

	out, _, err := execute(t, NewHistoryCommand(textOpts()), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")

	out, _, err = execute(t, NewHistoryCommand(jsonOpts()), "--db", db)
	require.NoError(t, err)
	assert.Empty(t, decode[[]HistoryEntry](t, out).Data)
}

func TestHistoryShowRun(t *testing.T) {
	db := seedLedger(t, ir.Request{Formula: "x^2", A: 0, B: 2, N: 4})

	out, _, err := execute(t, NewHistoryCommand(jsonOpts()), "--db", db, "--id", "run-1")
	require.NoError(t, err)

	resp := decode[HistoryEntry](t, out)
	assert.Equal(t, "run-1", resp.RunID)
	require.Len(t, resp.Data.Samples, 5)
	assert.Equal(t, Sample{I: 4, X: 2, Y: 4}, resp.Data.Samples[4])
	assert.Equal(t, ir.MustRequestID(ir.RuleTrapezoidal, ir.Request{Formula: "x^2", A: 0, B: 2, N: 4}), resp.Data.RequestID)

	out, _, err = execute(t, NewHistoryCommand(textOpts()), "--db", db, "--id", "run-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Run run-1 (seq 1)")
	assert.Contains(t, out, "Integral:  2.75")
	assert.Contains(t, out, "Trace:")
}

func TestHistoryRunNotFound(t *testing.T) {
	db := seedLedger(t)

	out, _, err := execute(t, NewHistoryCommand(jsonOpts()), "--db", db, "--id", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode[any](t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunNotFound, resp.Error.Code)
}

func TestHistoryRequiresDatabase(t *testing.T) {
	out, _, err := execute(t, NewHistoryCommand(jsonOpts()))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode[any](t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeArgument, resp.Error.Code)
}

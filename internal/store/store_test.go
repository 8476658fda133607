package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/testutil"
)

func TestOpenAppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"user_version": strconv.Itoa(SchemaVersion),
	} {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpenRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion+1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteRun(ctx, computeRun(t, "run-1", ir.RuleTrapezoidal, ir.Request{Formula: "x", A: 0, B: 1, N: 2})))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWriteReadRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	req := ir.Request{Formula: "sin(x)", A: 0, B: math.Pi, N: 12}
	run := computeRun(t, "run-1", ir.RuleSimpson13, req)
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, run.RequestID, got.RequestID)
	assert.Equal(t, ir.MustRequestID(ir.RuleSimpson13, req), got.RequestID)
	assert.Equal(t, ir.RuleSimpson13, got.Rule)
	assert.Equal(t, req, got.Request)
	assert.Equal(t, int64(1), got.Seq, "first run gets seq 1")
	assert.Equal(t, ir.EngineVersion, got.EngineVersion)
	assert.Equal(t, ir.IRVersion, got.IRVersion)
	testutil.AssertSameFloat(t, run.Integral, got.Integral)
	testutil.AssertSameSamples(t, run.Samples, got.Samples)

	hash, err := ir.TraceHash(got.Result())
	require.NoError(t, err)
	assert.Equal(t, run.TraceHash, hash, "stored trace reproduces its hash")
}

func TestNonFiniteIntegralSurvives(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := computeRun(t, "run-nan", ir.RuleSimpson13, ir.Request{Formula: "ln(x)", A: 0, B: 1, N: 4})
	require.False(t, run.Finite())
	require.NoError(t, s.WriteRun(ctx, run))

	got, err := s.ReadRun(ctx, "run-nan")
	require.NoError(t, err)
	assert.False(t, got.Finite())
	testutil.AssertSameFloat(t, run.Integral, got.Integral)
	testutil.AssertSameSamples(t, run.Samples, got.Samples)
	assert.True(t, math.IsInf(got.Samples[0].Y, -1), "ln(0) is -Inf")
}

func TestWriteRunIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	run := computeRun(t, "run-1", ir.RuleBoole, ir.Request{Formula: "x^2", A: 0, B: 1, N: 4})
	require.NoError(t, s.WriteRun(ctx, run))
	require.NoError(t, s.WriteRun(ctx, run))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestWriteRunRejectsSeqHeldByAnotherRun(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	req := ir.Request{Formula: "x", A: 0, B: 1, N: 2}

	first := computeRun(t, "id-1", ir.RuleTrapezoidal, req)
	first.Seq = 7
	require.NoError(t, s.WriteRun(ctx, first))

	second := computeRun(t, "id-2", ir.RuleTrapezoidal, req)
	second.Seq = 7
	assert.ErrorContains(t, s.WriteRun(ctx, second), "UNIQUE")

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The same run again is still a no-op.
	require.NoError(t, s.WriteRun(ctx, first))
}

func TestWriteRunRejectsEmptyID(t *testing.T) {
	s := createTestStore(t)
	run := computeRun(t, "", ir.RuleBoole, ir.Request{Formula: "x", A: 0, B: 1, N: 4})
	assert.ErrorContains(t, s.WriteRun(t.Context(), run), "empty id")
}

func TestReadRunNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(t.Context(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRunsOrdering(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	ids := testutil.NewSequentialIDs("run")

	req := ir.Request{Formula: "x^3", A: -1, B: 1, N: 6}
	for _, rule := range []ir.Rule{ir.RuleTrapezoidal, ir.RuleSimpson13, ir.RuleSimpson38} {
		require.NoError(t, s.WriteRun(ctx, computeRun(t, ids.Generate(), rule, req)))
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{runs[0].Seq, runs[1].Seq, runs[2].Seq})
	assert.Equal(t, "run-0003", runs[0].ID)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ir.RuleSimpson38, runs[0].Rule)
}

func TestListRunsEmpty(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(t.Context(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestExplicitSeqFromClock(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()
	clock := testutil.NewDeterministicClockAt(100)
	ids := testutil.NewFixedIDs("b", "a")

	req := ir.Request{Formula: "1", A: 0, B: 1, N: 2}
	for range 2 {
		run := computeRun(t, ids.Generate(), ir.RuleSimpson13, req)
		run.Seq = clock.Next()
		require.NoError(t, s.WriteRun(ctx, run))
	}

	// A zero seq continues after the highest stamped position.
	require.NoError(t, s.WriteRun(ctx, computeRun(t, "c", ir.RuleSimpson13, req)))

	got, err := s.ReadRun(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(103), got.Seq)
}

func TestRunsForRequest(t *testing.T) {
	s := createTestStore(t)
	ctx := t.Context()

	sine := ir.Request{Formula: "sin(x)", A: 0, B: 1, N: 4}
	other := ir.Request{Formula: "cos(x)", A: 0, B: 1, N: 4}
	require.NoError(t, s.WriteRun(ctx, computeRun(t, "r1", ir.RuleBoole, sine)))
	require.NoError(t, s.WriteRun(ctx, computeRun(t, "r2", ir.RuleBoole, other)))
	require.NoError(t, s.WriteRun(ctx, computeRun(t, "r3", ir.RuleBoole, ir.Request{Formula: "  sin(x) ", A: 0, B: 1, N: 4})))

	runs, err := s.RunsForRequest(ctx, ir.MustRequestID(ir.RuleBoole, sine))
	require.NoError(t, err)
	require.Len(t, runs, 2, "surrounding whitespace does not change the request id")
	assert.Equal(t, "r1", runs[0].ID)
	assert.Equal(t, "r3", runs[1].ID)
	assert.Equal(t, runs[0].TraceHash, runs[1].TraceHash, "same request, same trace")
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	assert.Regexp(t, uuidRe, a)
	assert.NotEqual(t, a, b)
}

func TestSamplesJSONIsCanonical(t *testing.T) {
	got, err := marshalSamples([]ir.Sample{{X: 0, Y: math.NaN()}, {X: 0.5, Y: math.Inf(1)}})
	require.NoError(t, err)
	assert.Equal(t, `[{"x":0,"y":"NaN"},{"x":0.5,"y":"+Inf"}]`, got)

	empty, err := marshalSamples(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	back, err := unmarshalSamples(empty)
	require.NoError(t, err)
	assert.NotNil(t, back)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// ErrNotFound is returned by ReadRun when no run has the requested id.
var ErrNotFound = errors.New("run not found")

const runColumns = `id, request_id, rule, formula, a, b, n, integral, samples, trace_hash, seq, engine_version, ir_version`

// ReadRun returns the run with the given id, or ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
// Ordering is deterministic: ORDER BY seq DESC, id COLLATE BINARY ASC.
// A limit of zero or less returns every run.
//
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

// RunsForRequest returns every run of one content-addressed request in
// ledger order: ORDER BY seq ASC, id COLLATE BINARY ASC.
func (s *Store) RunsForRequest(ctx context.Context, requestID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE request_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return collectRuns(rows)
}

func collectRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                    Run
		rule                   string
		a, b, integral, sample string
	)
	err := sc.Scan(
		&run.ID,
		&run.RequestID,
		&rule,
		&run.Request.Formula,
		&a,
		&b,
		&run.Request.N,
		&integral,
		&sample,
		&run.TraceHash,
		&run.Seq,
		&run.EngineVersion,
		&run.IRVersion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Rule = ir.Rule(rule)

	if run.Request.A, err = parseFloatColumn("a", a); err != nil {
		return Run{}, err
	}
	if run.Request.B, err = parseFloatColumn("b", b); err != nil {
		return Run{}, err
	}
	if run.Integral, err = parseFloatColumn("integral", integral); err != nil {
		return Run{}, err
	}
	if run.Samples, err = unmarshalSamples(sample); err != nil {
		return Run{}, err
	}
	return run, nil
}

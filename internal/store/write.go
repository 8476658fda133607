package store

import (
	"context"
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// WriteRun inserts a run into the ledger. Writing the same run id twice is
// a no-op; a seq already held by another run is an error.
//
// A zero Seq is replaced with the next position after the current maximum.
// Samples are serialized to canonical JSON; the integral and bounds are
// stored as text so NaN and ±Inf survive.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("write run: empty id")
	}
	samplesJSON, err := marshalSamples(run.Samples)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}
	if run.IRVersion == "" {
		run.IRVersion = ir.IRVersion
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, request_id, rule, formula, a, b, n, integral, finite, samples, trace_hash, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			COALESCE(NULLIF(?, 0), (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs)),
			?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.RequestID,
		string(run.Rule),
		run.Request.Formula,
		ir.FormatFloat(run.Request.A),
		ir.FormatFloat(run.Request.B),
		run.Request.N,
		ir.FormatFloat(run.Integral),
		boolToInt(run.Finite()),
		samplesJSON,
		run.TraceHash,
		run.Seq,
		run.EngineVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	return nil
}

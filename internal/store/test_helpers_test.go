package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/quadra/internal/ir"
	"github.com/roach88/quadra/internal/quadrature"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// computeRun runs a real calculation and wraps it as a ledger entry.
func computeRun(t *testing.T, id string, rule ir.Rule, req ir.Request) Run {
	t.Helper()
	res, err := quadrature.Compute(rule, req)
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	run, err := NewRun(id, rule, req, *res)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	return run
}

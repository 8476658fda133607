package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/quadra/internal/ir"
)

// Snapshot renders the ledger view of a scenario result as canonical JSON.
// Rejected cases record their error code instead of a run.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	cases := make([]any, len(result.Cases))
	for i, c := range result.Cases {
		entry := map[string]any{
			"name":       c.Name,
			"rule":       c.Rule,
			"request_id": c.RequestID,
		}
		if c.ErrorCode != "" {
			entry["error"] = c.ErrorCode
		} else {
			entry["run_id"] = c.RunID
			entry["seq"] = c.Seq
			entry["integral"] = c.Integral
			entry["samples"] = c.Samples
			entry["trace_hash"] = c.TraceHash
		}
		cases[i] = entry
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"cases":         cases,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check expectations.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := RunContext(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/quadra/internal/ir"
)

// marshalSamples converts the sample trace to canonical JSON TEXT for storage.
func marshalSamples(samples []ir.Sample) (string, error) {
	if samples == nil {
		samples = []ir.Sample{}
	}
	data, err := ir.MarshalCanonical(samples)
	if err != nil {
		return "", fmt.Errorf("marshal samples: %w", err)
	}
	return string(data), nil
}

// unmarshalSamples parses canonical JSON TEXT back to samples. Non-finite
// values round-trip through their string tokens.
func unmarshalSamples(data string) ([]ir.Sample, error) {
	if data == "" || data == "[]" {
		return []ir.Sample{}, nil
	}
	var samples []ir.Sample
	if err := json.Unmarshal([]byte(data), &samples); err != nil {
		return nil, fmt.Errorf("unmarshal samples: %w", err)
	}
	return samples, nil
}

func parseFloatColumn(name, text string) (float64, error) {
	v, err := ir.ParseFloat(text)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

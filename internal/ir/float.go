package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Tokens used for non-finite floats in JSON and in text output.
const (
	TokenNaN    = "NaN"
	TokenPosInf = "+Inf"
	TokenNegInf = "-Inf"
)

// FormatFloat renders v with the shortest representation that round-trips.
// Non-finite values render as "NaN", "+Inf" or "-Inf".
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return TokenNaN
	case math.IsInf(v, 1):
		return TokenPosInf
	case math.IsInf(v, -1):
		return TokenNegInf
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseFloat is the inverse of FormatFloat. It also accepts "Inf" and "inf".
func ParseFloat(s string) (float64, error) {
	switch s {
	case TokenNaN:
		return math.NaN(), nil
	case TokenPosInf, "Inf", "inf":
		return math.Inf(1), nil
	case TokenNegInf, "-inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float %q: %w", s, err)
	}
	return v, nil
}

// appendFloatJSON writes v as a JSON number, or as a JSON string when v is
// non-finite.
func appendFloatJSON(buf []byte, v float64) []byte {
	if !IsFinite(v) {
		buf = append(buf, '"')
		buf = append(buf, FormatFloat(v)...)
		return append(buf, '"')
	}
	return strconv.AppendFloat(buf, v, 'g', -1, 64)
}

// decodeFloatJSON reads a value written by appendFloatJSON.
func decodeFloatJSON(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("empty float value")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return ParseFloat(s)
	}
	return strconv.ParseFloat(string(raw), 64)
}

// MarshalJSON encodes the sample as {"x":...,"y":...}.
func (s Sample) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 48)
	buf = append(buf, `{"x":`...)
	buf = appendFloatJSON(buf, s.X)
	buf = append(buf, `,"y":`...)
	buf = appendFloatJSON(buf, s.Y)
	return append(buf, '}'), nil
}

// UnmarshalJSON decodes a sample written by MarshalJSON.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	x, err := decodeFloatJSON(raw.X)
	if err != nil {
		return fmt.Errorf("sample x: %w", err)
	}
	y, err := decodeFloatJSON(raw.Y)
	if err != nil {
		return fmt.Errorf("sample y: %w", err)
	}
	s.X, s.Y = x, y
	return nil
}

// MarshalJSON encodes the result as {"integral":...,"iterations":[...]}.
func (r Result) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 32+len(r.Iterations)*40)
	buf = append(buf, `{"integral":`...)
	buf = appendFloatJSON(buf, r.Integral)
	buf = append(buf, `,"iterations":[`...)
	for i, s := range r.Iterations {
		if i > 0 {
			buf = append(buf, ',')
		}
		b, _ := s.MarshalJSON()
		buf = append(buf, b...)
	}
	return append(buf, "]}"...), nil
}

// UnmarshalJSON decodes a result written by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw struct {
		Integral   json.RawMessage `json:"integral"`
		Iterations []Sample        `json:"iterations"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := decodeFloatJSON(raw.Integral)
	if err != nil {
		return fmt.Errorf("integral: %w", err)
	}
	r.Integral = v
	r.Iterations = raw.Iterations
	if r.Iterations == nil {
		r.Iterations = []Sample{}
	}
	return nil
}

// MarshalJSON encodes the request, writing non-finite bounds as strings.
func (r Request) MarshalJSON() ([]byte, error) {
	formula, err := json.Marshal(r.Formula)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 64+len(formula))
	buf = append(buf, `{"func_str":`...)
	buf = append(buf, formula...)
	buf = append(buf, `,"a":`...)
	buf = appendFloatJSON(buf, r.A)
	buf = append(buf, `,"b":`...)
	buf = appendFloatJSON(buf, r.B)
	buf = append(buf, `,"n":`...)
	buf = strconv.AppendInt(buf, int64(r.N), 10)
	return append(buf, '}'), nil
}

// UnmarshalJSON decodes a request written by MarshalJSON.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Formula string          `json:"func_str"`
		A       json.RawMessage `json:"a"`
		B       json.RawMessage `json:"b"`
		N       int             `json:"n"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a, err := decodeFloatJSON(raw.A)
	if err != nil {
		return fmt.Errorf("a: %w", err)
	}
	b, err := decodeFloatJSON(raw.B)
	if err != nil {
		return fmt.Errorf("b: %w", err)
	}
	*r = Request{Formula: raw.Formula, A: a, B: b, N: raw.N}
	return nil
}

package ir

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		in   string
		want Rule
		ok   bool
	}{
		{"trapezoidal", RuleTrapezoidal, true},
		{" Trapezoidal ", RuleTrapezoidal, true},
		{"simpson13", RuleSimpson13, true},
		{"simpson", RuleSimpson38, true},
		{"Simpson3/8", RuleSimpson38, true},
		{"boole", RuleBoole, true},
		{"simpsonAbierto", RuleOpenSimpson, true},
		{"open-simpson", RuleOpenSimpson, true},
		{"gauss", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRule(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllRulesParseToThemselves(t *testing.T) {
	for _, r := range AllRules {
		got, ok := ParseRule(r.String())
		require.True(t, ok, r)
		assert.Equal(t, r, got)
	}
}

func TestRequestStep(t *testing.T) {
	assert.Equal(t, 0.5, Request{A: 0, B: 2, N: 4}.Step())
	assert.Equal(t, -0.5, Request{A: 2, B: 0, N: 4}.Step())
}

func TestResultNonFinite(t *testing.T) {
	res := Result{
		Integral: math.NaN(),
		Iterations: []Sample{
			{X: 0, Y: 1},
			{X: 1, Y: math.NaN()},
			{X: 2, Y: 3},
			{X: 3, Y: math.Inf(1)},
		},
	}

	assert.False(t, res.Finite())
	assert.Equal(t, []int{1, 3}, res.NonFinite())
	assert.True(t, Result{Integral: 2}.Finite())
	assert.Empty(t, Result{Integral: 2}.NonFinite())
}

func TestResultJSONRoundTripPreservesNonFinite(t *testing.T) {
	res := Result{
		Integral:   math.Inf(1),
		Iterations: []Sample{{X: 0, Y: math.Inf(1)}, {X: 0.5, Y: math.NaN()}, {X: 1, Y: 2}},
	}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"integral":"+Inf","iterations":[{"x":0,"y":"+Inf"},{"x":0.5,"y":"NaN"},{"x":1,"y":2}]}`, string(data))

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, math.IsInf(back.Integral, 1))
	require.Len(t, back.Iterations, 3)
	assert.True(t, math.IsNaN(back.Iterations[1].Y))
	assert.Equal(t, 2.0, back.Iterations[2].Y)
}

func TestRequestJSON(t *testing.T) {
	req := Request{Formula: "sin(x)", A: 0, B: math.Pi, N: 12}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var back Request
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, req, back)
}

func TestFormatParseFloat(t *testing.T) {
	for _, v := range []float64{0, 1.5, -2.25e-9, math.Inf(1), math.Inf(-1)} {
		got, err := ParseFloat(FormatFloat(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	got, err := ParseFloat(FormatFloat(math.NaN()))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))

	_, err = ParseFloat("abc")
	assert.Error(t, err)
}

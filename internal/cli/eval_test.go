package cli

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalJSON(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand(jsonOpts()), "sin(x)", "0", "pi/2", "pi")
	require.NoError(t, err)

	res := decode[EvalResult](t, out).Data
	assert.True(t, res.Valid)
	assert.Empty(t, res.Normalized)
	require.Len(t, res.Points, 3)
	assert.Equal(t, Float(0), res.Points[0].Y)
	assert.Equal(t, Float(math.Pi/2), res.Points[1].X)
	assert.InDelta(t, 1.0, float64(res.Points[1].Y), 1e-15)
	assert.InDelta(t, 0.0, float64(res.Points[2].Y), 1e-15)
}

func TestEvalText(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand(textOpts()), "2x", "3", "--show-normalized")
	require.NoError(t, err)
	assert.Equal(t, "normalized: 2*x\nf(3) = 6\n", out)
}

func TestEvalUndefinedValues(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand(jsonOpts()), "1/x", "0")
	require.NoError(t, err)
	res := decode[EvalResult](t, out).Data
	assert.True(t, math.IsInf(float64(res.Points[0].Y), 1))

	out, _, err = execute(t, NewEvalCommand(textOpts()), "log(x)", "--", "-1")
	require.NoError(t, err)
	assert.Equal(t, "f(-1) = NaN\n", out)
}

func TestEvalMalformedFormula(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand(jsonOpts()), "sin(", "1")
	require.NoError(t, err, "evaluation never fails")

	res := decode[EvalResult](t, out).Data
	assert.False(t, res.Valid)
	assert.True(t, math.IsNaN(float64(res.Points[0].Y)))
}

func TestEvalBadPoint(t *testing.T) {
	out, _, err := execute(t, NewEvalCommand(jsonOpts()), "x", "1", "(")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decode[any](t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeArgument, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "x[1]")
}

func TestEvalMissingArgs(t *testing.T) {
	_, _, err := execute(t, NewEvalCommand(textOpts()), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg")
}

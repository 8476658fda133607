package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/quadra/internal/ir"
)

func TestRulesJSON(t *testing.T) {
	out, _, err := execute(t, NewRulesCommand(jsonOpts()))
	require.NoError(t, err)

	rules := decode[[]RuleInfo](t, out).Data
	require.Len(t, rules, 5)

	names := make([]ir.Rule, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	assert.Equal(t, ir.AllRules, names)

	boole := rules[3]
	assert.Equal(t, "Boole", boole.Title)
	assert.Equal(t, 4, boole.Multiple)
	assert.Equal(t, 5, boole.Degree)
	assert.Equal(t, Float(2.0/45), boole.Scale)

	open := rules[4]
	assert.True(t, open.Open)
	assert.Equal(t, 2, open.Multiple)
}

func TestRulesText(t *testing.T) {
	out, _, err := execute(t, NewRulesCommand(textOpts()))
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "trapezoidal")
	assert.Contains(t, out, "1 4 2 4 ... 2 4 1")
	assert.Contains(t, out, "skipped")
}

func TestRulesRejectsArgs(t *testing.T) {
	_, _, err := execute(t, NewRulesCommand(textOpts()), "boole")
	assert.Error(t, err)
}

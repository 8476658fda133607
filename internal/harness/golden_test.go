package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolynomialsGolden(t *testing.T) {
	result, err := RunWithGolden(t, loadScenario(t, "testdata/scenarios/polynomials.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

package function_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/fixpoint-explorer/internal/function"
)

func TestParseParams(t *testing.T) {
	env, err := function.ParseParams([]string{"c1", "c2"}, map[string]string{"c1": "1.5", "c2": " -2e3 ", "c9": "junk"})
	require.NoError(t, err)
	assert.Equal(t, 1.5, env["c1"])
	assert.Equal(t, -2000.0, env["c2"])
	_, extra := env["c9"]
	assert.False(t, extra)
}

func TestParseParams_NoConstants(t *testing.T) {
	env, err := function.ParseParams(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, env)
}

func TestParseParams_Rejects(t *testing.T) {
	for _, values := range []map[string]string{
		{},
		{"c1": ""},
		{"c1": "abc"},
		{"c1": "NaN"},
		{"c1": "inf"},
		{"c1": "1e400"},
	} {
		_, err := function.ParseParams([]string{"c1"}, values)
		assert.ErrorIs(t, err, function.ErrParameter, "%v", values)
	}
}

func TestFloatParams(t *testing.T) {
	env, err := function.FloatParams([]string{"c1"}, map[string]float64{"c1": 0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.25, env["c1"])

	_, err = function.FloatParams([]string{"c1"}, map[string]float64{})
	assert.ErrorIs(t, err, function.ErrParameter)
	_, err = function.FloatParams([]string{"c1"}, map[string]float64{"c1": math.Inf(-1)})
	assert.ErrorIs(t, err, function.ErrParameter)
}

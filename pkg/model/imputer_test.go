package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImputer(t *testing.T) {
	imp, err := ParseImputer([]byte(`{"strategy":"mean","statistics":[1.5,null,3],"feature_names_in":["A","B","C"]}`))
	require.NoError(t, err)
	assert.Equal(t, "mean", imp.Strategy)
	assert.Equal(t, 3, imp.InputWidth())
	assert.Equal(t, 2, imp.OutputWidth())
	assert.True(t, math.IsNaN(imp.Statistics[1]))
	assert.Equal(t, []string{"A", "B", "C"}, imp.FeatureNames)
}

func TestParseImputer_Invalid(t *testing.T) {
	_, err := ParseImputer([]byte(`{"statistics":[]}`))
	assert.Error(t, err)

	_, err = ParseImputer([]byte(`{"statistics":[1],"feature_names_in":["A","B"]}`))
	assert.Error(t, err)

	_, err = ParseImputer([]byte(`[`))
	assert.Error(t, err)
}

func TestSimpleImputer_Transform(t *testing.T) {
	imp := &SimpleImputer{Statistics: []float64{1, 2, 3}}
	x := [][]float64{{math.NaN(), 20, math.NaN()}}

	out, err := imp.Transform(x)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 20, 3}}, out)
	assert.True(t, math.IsNaN(x[0][0]), "input must not be modified")
}

func TestSimpleImputer_DropsEmptyColumns(t *testing.T) {
	imp := &SimpleImputer{Statistics: []float64{1, math.NaN(), 3}}

	out, err := imp.Transform([][]float64{{10, 20, 30}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 30}}, out)

	imp.KeepEmpty = true
	out, err = imp.Transform([][]float64{{10, math.NaN(), 30}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{10, 0, 30}}, out)
}

func TestSimpleImputer_WidthMismatch(t *testing.T) {
	imp := &SimpleImputer{Statistics: []float64{1, 2}}
	_, err := imp.Transform([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestLoadImputer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imputer.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"strategy":"mean","statistics":[4]}`), 0o600))

	imp, err := LoadImputer(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, imp.Statistics)

	_, err = LoadImputer(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

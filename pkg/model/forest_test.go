package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two stumps on feature 0 and 1, three classes
const testForestJSON = `{
  "n_features": 2,
  "n_classes": 3,
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 50, "left": 1, "right": 2},
      {"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": [8, 2, 0]},
      {"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": [0, 1, 3]}
    ]},
    {"nodes": [
      {"feature": 1, "threshold": 70, "left": 1, "right": 2},
      {"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": [0.5, 0.5, 0]},
      {"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": [0, 0, 1]}
    ]}
  ]
}`

func TestParseForest(t *testing.T) {
	f, err := ParseForest([]byte(testForestJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, f.NumFeatures())
	assert.Equal(t, 3, f.NumClasses())
	assert.Len(t, f.Trees, 2)
}

func TestForest_PredictProba(t *testing.T) {
	f, err := ParseForest([]byte(testForestJSON))
	require.NoError(t, err)

	proba, err := f.PredictProba([][]float64{{40, 60}, {80, 90}})
	require.NoError(t, err)
	require.Len(t, proba, 2)

	// tree 1: [0.8, 0.2, 0], tree 2: [0.5, 0.5, 0]
	assert.InDeltaSlice(t, []float64{0.65, 0.35, 0}, proba[0], 1e-9)
	// tree 1: [0, 0.25, 0.75], tree 2: [0, 0, 1]
	assert.InDeltaSlice(t, []float64{0, 0.125, 0.875}, proba[1], 1e-9)

	for _, p := range proba {
		assert.InDelta(t, 1.0, sum(p), 1e-9)
	}
}

func TestForest_Predict(t *testing.T) {
	f, err := ParseForest([]byte(testForestJSON))
	require.NoError(t, err)

	codes, err := f.Predict([][]float64{{40, 60}, {80, 90}})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, codes)
}

func TestForest_ThresholdIsInclusiveLeft(t *testing.T) {
	f, err := ParseForest([]byte(testForestJSON))
	require.NoError(t, err)

	proba, err := f.PredictProba([][]float64{{50, 70}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.65, 0.35, 0}, proba[0], 1e-9)
}

func TestForest_InputErrors(t *testing.T) {
	f, err := ParseForest([]byte(testForestJSON))
	require.NoError(t, err)

	_, err = f.PredictProba([][]float64{{1, 2, 3}})
	assert.Error(t, err)

	_, err = f.PredictProba(nil)
	assert.Error(t, err)

	_, err = f.PredictProba([][]float64{{math.NaN(), 1}})
	assert.Error(t, err)
}

func TestParseForest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"bad json", `{`},
		{"no features", `{"n_features": 0, "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [1, 1]}]}]}`},
		{"no classes", `{"n_features": 1, "n_classes": 0, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [1]}]}]}`},
		{"no trees", `{"n_features": 1, "n_classes": 2, "trees": []}`},
		{"empty tree", `{"n_features": 1, "n_classes": 2, "trees": [{"nodes": []}]}`},
		{"leaf width", `{"n_features": 1, "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [1]}]}]}`},
		{"leaf weight", `{"n_features": 1, "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [0, 0]}]}]}`},
		{"feature range", `{"n_features": 1, "n_classes": 2, "trees": [{"nodes": [{"feature": 3, "left": 1, "right": 2}, {"left": -1, "right": -1, "value": [1, 0]}, {"left": -1, "right": -1, "value": [0, 1]}]}]}`},
		{"cycle", `{"n_features": 1, "n_classes": 2, "trees": [{"nodes": [{"feature": 0, "left": 0, "right": 1}, {"left": -1, "right": -1, "value": [0, 1]}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseForest([]byte(tt.json))
			assert.Error(t, err)
		})
	}
}

func TestLoadClassifier_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(testForestJSON), 0o600))

	c, err := LoadClassifier(path, ONNXOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, c.NumClasses())
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("a/model_rf_final.JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatForest, f)

	f, err = FormatFromPath("model.onnx")
	require.NoError(t, err)
	assert.Equal(t, FormatONNX, f)

	_, err = FormatFromPath("model.pkl")
	assert.Error(t, err)
}

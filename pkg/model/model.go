// Package model holds the pre-trained preprocessing and classification
// artifacts: the imputer, the classifier and the label decoder.
package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	FormatForest = "forest"
	FormatONNX   = "onnx"
)

// Imputer fills and normalizes raw feature rows before classification.
type Imputer interface {
	// InputWidth is the number of columns Transform expects.
	InputWidth() int
	// OutputWidth is the number of columns Transform produces.
	OutputWidth() int
	Transform(x [][]float64) ([][]float64, error)
}

// Classifier predicts encoded class codes. Codes are 0..NumClasses()-1 and
// index the columns returned by PredictProba.
type Classifier interface {
	NumFeatures() int
	NumClasses() int
	Predict(x [][]float64) ([]int, error)
	PredictProba(x [][]float64) ([][]float64, error)
}

// Decoder maps class codes back to human-readable labels.
type Decoder interface {
	Classes() []string
	Decode(code int) (string, error)
}

// FormatFromPath derives the classifier format from the file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatForest, nil
	case ".onnx":
		return FormatONNX, nil
	default:
		return "", fmt.Errorf("unsupported model file type: %s", path)
	}
}

// LoadClassifier loads a classifier from path using the format implied by its extension.
func LoadClassifier(path string, opts ONNXOptions) (Classifier, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatForest:
		f, err := LoadForest(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	case FormatONNX:
		c, err := LoadONNX(path, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %s", format)
	}
}

func checkRows(x [][]float64, width int, who string) error {
	if len(x) == 0 {
		return fmt.Errorf("%s: empty input", who)
	}
	for i, row := range x {
		if len(row) != width {
			return fmt.Errorf("%s: row %d has %d features, but %d are expected", who, i, len(row), width)
		}
	}
	return nil
}

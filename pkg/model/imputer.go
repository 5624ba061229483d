package model

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// SimpleImputer replaces missing (NaN) values with per-column statistics.
// Columns whose statistic is itself NaN were empty at fit time; they are
// dropped from the output unless KeepEmpty is set, in which case they are
// filled with zero.
type SimpleImputer struct {
	Strategy     string
	Statistics   []float64
	FeatureNames []string
	KeepEmpty    bool
}

type imputerFile struct {
	Strategy          string     `json:"strategy"`
	Statistics        []*float64 `json:"statistics"`
	FeatureNamesIn    []string   `json:"feature_names_in,omitempty"`
	KeepEmptyFeatures bool       `json:"keep_empty_features"`
}

// LoadImputer reads a SimpleImputer exported as JSON.
func LoadImputer(path string) (*SimpleImputer, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading imputer: %w", err)
	}
	return ParseImputer(b)
}

// ParseImputer decodes a SimpleImputer. A null statistic decodes to NaN.
func ParseImputer(b []byte) (*SimpleImputer, error) {
	var f imputerFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decoding imputer: %w", err)
	}
	if len(f.Statistics) == 0 {
		return nil, fmt.Errorf("imputer has no statistics")
	}
	if len(f.FeatureNamesIn) > 0 && len(f.FeatureNamesIn) != len(f.Statistics) {
		return nil, fmt.Errorf("imputer has %d feature names but %d statistics", len(f.FeatureNamesIn), len(f.Statistics))
	}

	imp := &SimpleImputer{
		Strategy:     f.Strategy,
		Statistics:   make([]float64, len(f.Statistics)),
		FeatureNames: f.FeatureNamesIn,
		KeepEmpty:    f.KeepEmptyFeatures,
	}
	for i, s := range f.Statistics {
		if s == nil {
			imp.Statistics[i] = math.NaN()
			continue
		}
		imp.Statistics[i] = *s
	}
	return imp, nil
}

func (s *SimpleImputer) InputWidth() int {
	return len(s.Statistics)
}

func (s *SimpleImputer) OutputWidth() int {
	if s.KeepEmpty {
		return len(s.Statistics)
	}
	n := 0
	for _, v := range s.Statistics {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Transform returns a new matrix; x is not modified.
func (s *SimpleImputer) Transform(x [][]float64) ([][]float64, error) {
	if err := checkRows(x, len(s.Statistics), "imputer"); err != nil {
		return nil, err
	}

	width := s.OutputWidth()
	out := make([][]float64, len(x))
	for r, row := range x {
		res := make([]float64, 0, width)
		for j, v := range row {
			stat := s.Statistics[j]
			if math.IsNaN(stat) {
				if !s.KeepEmpty {
					continue
				}
				stat = 0
			}
			if math.IsNaN(v) {
				v = stat
			}
			res = append(res, v)
		}
		out[r] = res
	}
	return out, nil
}

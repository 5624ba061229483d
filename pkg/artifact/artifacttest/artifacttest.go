// Package artifacttest writes a small, self-consistent artifact set for tests.
package artifacttest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/topicpredict/pkg/artifact"
)

// Catalog order used by the fixture. "Basis Data" has a null mean that the
// imputer fills with 68.
var (
	Features  = []string{"Algoritma", "Basis Data", "Jaringan Komputer", "Kecerdasan Buatan", "Pemrograman Web"}
	Important = []string{"Kecerdasan Buatan", "Jaringan Komputer", "Pemrograman Web"}
	Classes   = []string{"Artificial Intelligence", "Computer Networks", "Software Engineering"}
)

const (
	featureNamesJSON = `["Algoritma", "Basis Data", "Jaringan Komputer", "Kecerdasan Buatan", "Pemrograman Web"]`
	importantJSON    = `["Kecerdasan Buatan", "Jaringan Komputer", "Pemrograman Web"]`
	meansJSON        = `{"Algoritma": 72, "Basis Data": null, "Jaringan Komputer": 74, "Kecerdasan Buatan": 76, "Pemrograman Web": 78}`
	encoderJSON      = `{"classes": ["Artificial Intelligence", "Computer Networks", "Software Engineering"]}`
	imputerJSON      = `{
  "strategy": "mean",
  "statistics": [72, 68, 74, 76, 78],
  "feature_names_in": ["Algoritma", "Basis Data", "Jaringan Komputer", "Kecerdasan Buatan", "Pemrograman Web"]
}`

	// With every important feature at 75 the forest gives
	// [0.1333, 0.1333, 0.7333]: Software Engineering.
	forestJSON = `{
  "n_features": 5,
  "n_classes": 3,
  "trees": [
    {"nodes": [
      {"feature": 3, "threshold": 80, "left": 1, "right": 2},
      {"feature": -1, "left": -1, "right": -1, "value": [1, 2, 7]},
      {"feature": -1, "left": -1, "right": -1, "value": [8, 1, 1]}
    ]},
    {"nodes": [
      {"feature": 2, "threshold": 80, "left": 1, "right": 2},
      {"feature": -1, "left": -1, "right": -1, "value": [2, 1, 7]},
      {"feature": -1, "left": -1, "right": -1, "value": [1, 8, 1]}
    ]},
    {"nodes": [
      {"feature": 4, "threshold": 60, "left": 1, "right": 2},
      {"feature": -1, "left": -1, "right": -1, "value": [4, 4, 2]},
      {"feature": -1, "left": -1, "right": -1, "value": [1, 1, 8]}
    ]}
  ]
}`
)

// Contents returns the fixture file contents keyed by artifact.
func Contents() map[artifact.ID]string {
	return map[artifact.ID]string{
		artifact.Model:             forestJSON,
		artifact.Imputer:           imputerJSON,
		artifact.Encoder:           encoderJSON,
		artifact.AllFeatures:       featureNamesJSON,
		artifact.ImportantFeatures: importantJSON,
		artifact.FeatureMeans:      meansJSON,
	}
}

// Write stores the fixture in a temp directory, skipping the listed artifacts.
func Write(t testing.TB, skip ...artifact.ID) artifact.Config {
	t.Helper()
	return WriteContents(t, Contents(), skip...)
}

// WriteContents stores the given contents using the default file names.
func WriteContents(t testing.TB, contents map[artifact.ID]string, skip ...artifact.ID) artifact.Config {
	t.Helper()

	dir := t.TempDir()
	skipped := make(map[artifact.ID]bool, len(skip))
	for _, id := range skip {
		skipped[id] = true
	}

	files := artifact.DefaultFiles()
	for id, content := range contents {
		if skipped[id] {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, files[id]), []byte(content), 0o600); err != nil {
			t.Fatalf("writing %s: %v", id, err)
		}
	}
	return artifact.Config{Dir: dir}
}

// Package artifact loads the pre-trained model artifacts as a single
// read-only bundle. Loading is all-or-nothing: if any artifact is missing
// or cannot be decoded, no bundle is returned.
package artifact

import (
	"path/filepath"

	"github.com/mchmarny/topicpredict/pkg/model"
)

// ID names one required artifact.
type ID string

const (
	Model             ID = "model"
	Imputer           ID = "imputer"
	Encoder           ID = "encoder"
	AllFeatures       ID = "all_features"
	ImportantFeatures ID = "important_features"
	FeatureMeans      ID = "feature_means"
)

// IDs lists every required artifact in display order.
func IDs() []ID {
	return []ID{Model, Imputer, Encoder, AllFeatures, ImportantFeatures, FeatureMeans}
}

// DefaultFiles maps each artifact to its file name in the artifact directory.
func DefaultFiles() map[ID]string {
	return map[ID]string{
		Model:             "model_rf_final.json",
		Imputer:           "imputer.json",
		Encoder:           "label_encoder.json",
		AllFeatures:       "feature_names.json",
		ImportantFeatures: "important_features.json",
		FeatureMeans:      "feature_means.json",
	}
}

// Config points the loader at the artifact files.
type Config struct {
	Dir string
	// Files overrides DefaultFiles per artifact. Relative names resolve against Dir.
	Files map[ID]string
	ONNX  model.ONNXOptions
}

// Location is the resolved path of one artifact.
type Location struct {
	ID   ID     `json:"id" yaml:"id"`
	Path string `json:"path" yaml:"path"`
}

// Locations resolves every required artifact, in IDs order.
func (c Config) Locations() []Location {
	defaults := DefaultFiles()
	out := make([]Location, 0, len(defaults))
	for _, id := range IDs() {
		name := defaults[id]
		if v, ok := c.Files[id]; ok && v != "" {
			name = v
		}
		if !filepath.IsAbs(name) {
			name = filepath.Join(c.Dir, name)
		}
		out = append(out, Location{ID: id, Path: name})
	}
	return out
}


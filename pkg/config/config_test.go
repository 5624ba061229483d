package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/topicpredict/pkg/artifact"
)

func TestLoad_Defaults(t *testing.T) {
	for _, p := range []string{"", filepath.Join(t.TempDir(), "missing.yaml")} {
		c, err := Load(p)
		require.NoError(t, err)
		assert.Equal(t, Default(), c)
		assert.NoError(t, Validate(c))
	}
}

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	c1 := Default()
	c1.Artifacts.Dir = "/models"
	c1.Artifacts.Files = map[string]string{"model": "model.onnx"}
	c1.Server.Port = 9090
	c1.Predict.CacheSize = 64

	require.NoError(t, Save(path, c1))

	c2, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
artifacts:
  dir: ./artifacts
server:
  port: 8181
  read_timeout: 3s
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(body), fileMode))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./artifacts", c.Artifacts.Dir)
	assert.Equal(t, 8181, c.Server.Port)
	assert.Equal(t, 3*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, 75.0, c.Form.Default)
	assert.Equal(t, "127.0.0.1:8181", c.Server.Addr())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "server: [1"},
		{"port", "server:\n  port: 70000"},
		{"log level", "log:\n  level: verbose"},
		{"default", "form:\n  default: 120"},
		{"artifact id", "artifacts:\n  files:\n    weights: w.json"},
		{"onnx classes", "artifacts:\n  onnx:\n    num_classes: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), fileMode))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_Invalid(t *testing.T) {
	assert.Error(t, Save("", Default()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}

func TestArtifactConfig(t *testing.T) {
	c := Default()
	c.Artifacts.Dir = "/models"
	c.Artifacts.Files = map[string]string{"model": "model.onnx"}
	c.Artifacts.ONNX.LibraryPath = "/lib/libonnxruntime.so"
	c.Artifacts.ONNX.NumClasses = 7

	ac := c.ArtifactConfig()
	assert.Equal(t, "/models", ac.Dir)
	assert.Equal(t, "model.onnx", ac.Files[artifact.Model])
	assert.Equal(t, "/lib/libonnxruntime.so", ac.ONNX.LibraryPath)
	assert.Equal(t, 7, ac.ONNX.NumClasses)
	assert.Equal(t, filepath.Join("/models", "model.onnx"), ac.Locations()[0].Path)
}

package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func TestONNXOptions_Defaults(t *testing.T) {
	o := ONNXOptions{}.withDefaults()
	assert.Equal(t, DefaultONNXInput, o.InputName)
	assert.Equal(t, DefaultONNXLabelOutput, o.LabelOutput)
	assert.Equal(t, DefaultONNXProbaOutput, o.ProbaOutput)

	o = ONNXOptions{InputName: "input"}.withDefaults()
	assert.Equal(t, "input", o.InputName)
}

func TestStaticWidth(t *testing.T) {
	infos := []ort.InputOutputInfo{
		{Name: "float_input", Dimensions: ort.NewShape(-1, 12)},
		{Name: "dynamic", Dimensions: ort.NewShape(-1, -1)},
	}

	w, err := staticWidth(infos, "float_input")
	require.NoError(t, err)
	assert.Equal(t, 12, w)

	_, err = staticWidth(infos, "dynamic")
	assert.Error(t, err)

	_, err = staticWidth(infos, "nope")
	assert.Error(t, err)
}

func TestResolveSharedLibraryPath(t *testing.T) {
	t.Setenv(onnxLibraryEnvVar, "/custom/libonnxruntime.so")
	assert.Equal(t, "/custom/libonnxruntime.so", resolveSharedLibraryPath(t.TempDir()))

	t.Setenv(onnxLibraryEnvVar, "")
	dir := t.TempDir()
	lib := filepath.Join(dir, "libonnxruntime.so")
	require.NoError(t, os.WriteFile(lib, []byte{}, 0o600))
	assert.Equal(t, lib, resolveSharedLibraryPath(dir))
}

func TestLoadONNX_MissingFile(t *testing.T) {
	_, err := LoadONNX(filepath.Join(t.TempDir(), "model.onnx"), ONNXOptions{})
	assert.Error(t, err)
}

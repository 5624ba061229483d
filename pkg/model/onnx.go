package model

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	onnxLibraryEnvVar = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

	DefaultONNXInput       = "float_input"
	DefaultONNXLabelOutput = "label"
	DefaultONNXProbaOutput = "probabilities"
)

var ortInit struct {
	once sync.Once
	err  error
}

// ONNXOptions configures an ONNX classifier exported without a ZipMap
// output, i.e. a label tensor plus a [1, classes] probability tensor.
type ONNXOptions struct {
	LibraryPath string
	InputName   string
	LabelOutput string
	ProbaOutput string
	// NumClasses is used when the probability output has a dynamic width.
	NumClasses int
}

func (o ONNXOptions) withDefaults() ONNXOptions {
	if o.InputName == "" {
		o.InputName = DefaultONNXInput
	}
	if o.LabelOutput == "" {
		o.LabelOutput = DefaultONNXLabelOutput
	}
	if o.ProbaOutput == "" {
		o.ProbaOutput = DefaultONNXProbaOutput
	}
	return o
}

// ONNXClassifier runs a classifier through ONNX Runtime. Every call allocates
// its own tensors, so concurrent predictions share no mutable state.
type ONNXClassifier struct {
	session  *ort.DynamicAdvancedSession
	opts     ONNXOptions
	features int
	classes  int
}

// LoadONNX initializes the runtime on first use and opens a session for path.
func LoadONNX(path string, opts ONNXOptions) (*ONNXClassifier, error) {
	opts = opts.withDefaults()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", path, err)
	}
	if err := initRuntime(opts.LibraryPath, filepath.Dir(path)); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("reading onnx model info: %w", err)
	}

	features, err := staticWidth(inputs, opts.InputName)
	if err != nil {
		return nil, err
	}
	classes, err := staticWidth(outputs, opts.ProbaOutput)
	if err != nil {
		if opts.NumClasses <= 0 {
			return nil, err
		}
		classes = opts.NumClasses
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{opts.InputName},
		[]string{opts.LabelOutput, opts.ProbaOutput},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating onnx session: %w", err)
	}

	slog.Debug("onnx classifier loaded", "path", path, "features", features, "classes", classes)

	return &ONNXClassifier{
		session:  session,
		opts:     opts,
		features: features,
		classes:  classes,
	}, nil
}

func (c *ONNXClassifier) NumFeatures() int {
	return c.features
}

func (c *ONNXClassifier) NumClasses() int {
	return c.classes
}

func (c *ONNXClassifier) Predict(x [][]float64) ([]int, error) {
	labels, _, err := c.run(x)
	return labels, err
}

func (c *ONNXClassifier) PredictProba(x [][]float64) ([][]float64, error) {
	_, proba, err := c.run(x)
	return proba, err
}

// Close releases the ONNX session.
func (c *ONNXClassifier) Close() error {
	if c == nil || c.session == nil {
		return nil
	}
	return c.session.Destroy()
}

func (c *ONNXClassifier) run(x [][]float64) ([]int, [][]float64, error) {
	if err := checkRows(x, c.features, "onnx"); err != nil {
		return nil, nil, err
	}

	labels := make([]int, len(x))
	proba := make([][]float64, len(x))
	for r, row := range x {
		l, p, err := c.runRow(row)
		if err != nil {
			return nil, nil, fmt.Errorf("onnx row %d: %w", r, err)
		}
		labels[r] = l
		proba[r] = p
	}
	return labels, proba, nil
}

func (c *ONNXClassifier) runRow(row []float64) (int, []float64, error) {
	data := make([]float32, len(row))
	for i, v := range row {
		data[i] = float32(v)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(c.features)), data)
	if err != nil {
		return 0, nil, fmt.Errorf("allocating input tensor: %w", err)
	}
	defer input.Destroy()

	label, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, nil, fmt.Errorf("allocating label tensor: %w", err)
	}
	defer label.Destroy()

	probaT, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(c.classes)))
	if err != nil {
		return 0, nil, fmt.Errorf("allocating probability tensor: %w", err)
	}
	defer probaT.Destroy()

	if err := c.session.Run([]ort.Value{input}, []ort.Value{label, probaT}); err != nil {
		return 0, nil, fmt.Errorf("onnx run: %w", err)
	}

	raw := probaT.GetData()
	proba := make([]float64, len(raw))
	for i, v := range raw {
		proba[i] = float64(v)
	}
	return int(label.GetData()[0]), proba, nil
}

func staticWidth(infos []ort.InputOutputInfo, name string) (int, error) {
	for _, info := range infos {
		if info.Name != name {
			continue
		}
		dims := info.Dimensions
		if len(dims) != 2 || dims[1] <= 0 {
			return 0, fmt.Errorf("onnx tensor %q has no static width: %v", name, dims)
		}
		return int(dims[1]), nil
	}
	return 0, fmt.Errorf("onnx model has no tensor named %q", name)
}

func initRuntime(libPath, modelDir string) error {
	ortInit.once.Do(func() {
		if libPath == "" {
			libPath = resolveSharedLibraryPath(modelDir)
		}
		if libPath == "" {
			ortInit.err = errors.New("onnxruntime shared library not found; set " + onnxLibraryEnvVar + " or install the runtime")
			return
		}
		ort.SetSharedLibraryPath(libPath)
		if !ort.IsInitialized() {
			if err := ort.InitializeEnvironment(); err != nil {
				ortInit.err = fmt.Errorf("initialize onnxruntime: %w", err)
			}
		}
	})
	return ortInit.err
}

// resolveSharedLibraryPath looks for the platform onnxruntime library. The
// environment variable wins, then the model directory and common locations.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv(onnxLibraryEnvVar)); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

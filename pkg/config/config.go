package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mchmarny/topicpredict/pkg/artifact"
	"github.com/mchmarny/topicpredict/pkg/model"
)

const (
	dirMode  = 0700
	fileMode = 0600

	DefaultArtifactDir = "."
	DefaultAddress     = "127.0.0.1"
	DefaultPort        = 8080
	DefaultTitle       = "Thesis Topic Prediction"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents app config object.
type Config struct {
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Server    ServerConfig    `yaml:"server"`
	Form      FormConfig      `yaml:"form"`
	Predict   PredictConfig   `yaml:"predict"`
	Log       LogConfig       `yaml:"log"`
}

type ArtifactsConfig struct {
	Dir string `yaml:"dir" validate:"required"`
	// Files overrides artifact file names, keyed by artifact id.
	Files map[string]string `yaml:"files,omitempty"`
	ONNX  ONNXConfig        `yaml:"onnx,omitempty"`
}

type ONNXConfig struct {
	LibraryPath string `yaml:"library_path,omitempty"`
	InputName   string `yaml:"input_name,omitempty"`
	LabelOutput string `yaml:"label_output,omitempty"`
	ProbaOutput string `yaml:"proba_output,omitempty"`
	// NumClasses is needed only when the probability output has a dynamic width.
	NumClasses int `yaml:"num_classes,omitempty" validate:"gte=0"`
}

type ServerConfig struct {
	Address         string        `yaml:"address" validate:"required"`
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	OpenBrowser     bool          `yaml:"open_browser"`
}

// Addr is the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

type FormConfig struct {
	Title   string  `yaml:"title" validate:"required"`
	Default float64 `yaml:"default" validate:"gte=0,lte=100"`
	Step    float64 `yaml:"step" validate:"gt=0"`
	Columns int     `yaml:"columns" validate:"gte=1,lte=6"`
}

type PredictConfig struct {
	// CacheSize enables the prediction memo when positive.
	CacheSize int `yaml:"cache_size" validate:"gte=0"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"oneof=text json"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			Dir: DefaultArtifactDir,
		},
		Server: ServerConfig{
			Address:         DefaultAddress,
			Port:            DefaultPort,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			OpenBrowser:     true,
		},
		Form: FormConfig{
			Title:   DefaultTitle,
			Default: 75,
			Step:    1,
			Columns: 3,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path or a
// file that does not exist yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config file: %s", path)
	}

	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
	}
	if err := Validate(c); err != nil {
		return nil, errors.Wrapf(err, "invalid config file: %s", path)
	}
	return c, nil
}

// Save writes c to path, creating the parent directory if needed.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return errors.Wrapf(err, "failed to create dir: %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// Validate checks field constraints and artifact file overrides.
func Validate(c *Config) error {
	if c == nil {
		return errors.New("config required")
	}
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}

	known := make(map[string]bool)
	for _, id := range artifact.IDs() {
		known[string(id)] = true
	}
	for k := range c.Artifacts.Files {
		if !known[k] {
			return fmt.Errorf("unknown artifact %q in artifacts.files", k)
		}
	}
	return nil
}

// ArtifactConfig converts the artifacts section for the loader.
func (c *Config) ArtifactConfig() artifact.Config {
	files := make(map[artifact.ID]string, len(c.Artifacts.Files))
	for k, v := range c.Artifacts.Files {
		files[artifact.ID(k)] = v
	}
	return artifact.Config{
		Dir:   c.Artifacts.Dir,
		Files: files,
		ONNX: model.ONNXOptions{
			LibraryPath: c.Artifacts.ONNX.LibraryPath,
			InputName:   c.Artifacts.ONNX.InputName,
			LabelOutput: c.Artifacts.ONNX.LabelOutput,
			ProbaOutput: c.Artifacts.ONNX.ProbaOutput,
			NumClasses:  c.Artifacts.ONNX.NumClasses,
		},
	}
}

// Package config loads the YAML run configuration used by the deepfool CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/oracle"
	"github.com/born-ml/deepfool/internal/parallel"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Model kinds.
const (
	KindONNX   = "onnx"
	KindLoom   = "loom"
	KindAffine = "affine"
)

// File is the on-disk run configuration.
type File struct {
	Model  Model  `yaml:"model"`
	Input  Input  `yaml:"input"`
	Attack Attack `yaml:"attack"`
	Eval   Eval   `yaml:"eval"`
	Output Output `yaml:"output"`
	Log    Log    `yaml:"log"`
}

// Model selects and configures the classifier.
type Model struct {
	Kind    string      `yaml:"kind"`
	Path    string      `yaml:"path"`
	ID      string      `yaml:"id"` // loom model id
	Device  string      `yaml:"device"`
	Flatten bool        `yaml:"flatten"`
	Weights [][]float64 `yaml:"weights"` // affine only
	Bias    []float64   `yaml:"bias"`    // affine only
}

// Input locates the image tensor.
type Input struct {
	Path   string `yaml:"path"`
	Tensor string `yaml:"tensor"`
	Shape  []int  `yaml:"shape"` // [C, H, W]; empty reads it from the tensor
}

// Attack mirrors deepfool.Config.
type Attack struct {
	NumClasses     int     `yaml:"num_classes"`
	Overshoot      float64 `yaml:"overshoot"`
	MaxIter        int     `yaml:"max_iter"`
	ApplyOvershoot bool    `yaml:"apply_overshoot"`
	Region         string  `yaml:"region"` // "x1,y1,x2,y2"; empty is the whole image
	Verbose        bool    `yaml:"verbose"`
	LogEvery       int     `yaml:"log_every"`
}

// Eval controls batch evaluation.
type Eval struct {
	Workers         int  `yaml:"workers"` // 0 uses every CPU
	ContinueOnError bool `yaml:"continue_on_error"`
}

// Output names the files a run writes. Empty paths are skipped, except
// Result which defaults to stdout.
type Output struct {
	Result        string `yaml:"result"`
	Perturbations string `yaml:"perturbations"`
	Metrics       string `yaml:"metrics"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns a File with the library defaults filled in.
func Default() *File {
	d := deepfool.DefaultConfig()
	return &File{
		Model: Model{Device: string(oracle.CPU)},
		Attack: Attack{
			NumClasses: d.NumClasses,
			Overshoot:  d.Overshoot,
			MaxIter:    d.MaxIter,
			LogEvery:   d.LogEvery,
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result.
// Unknown keys are rejected.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults and validates the result.
func Decode(r io.Reader) (*File, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values that do not depend on the model.
func (f *File) Validate() error {
	switch f.Model.Kind {
	case KindONNX, KindLoom:
		if f.Model.Path == "" {
			return fmt.Errorf("%w: model.path is required for %s", ErrInvalid, f.Model.Kind)
		}
	case KindAffine:
		if len(f.Model.Weights) == 0 {
			return fmt.Errorf("%w: model.weights is required for affine", ErrInvalid)
		}
	case "":
		return fmt.Errorf("%w: model.kind is required", ErrInvalid)
	default:
		return fmt.Errorf("%w: unknown model.kind %q", ErrInvalid, f.Model.Kind)
	}
	if f.Model.Kind == KindLoom && f.Model.ID == "" {
		return fmt.Errorf("%w: model.id is required for loom", ErrInvalid)
	}
	if _, err := oracle.ParseDevice(f.Model.Device); err != nil {
		return fmt.Errorf("%w: model.device: %w", ErrInvalid, err)
	}

	if len(f.Input.Shape) != 0 && len(f.Input.Shape) != 3 {
		return fmt.Errorf("%w: input.shape must be [C, H, W], got %v", ErrInvalid, f.Input.Shape)
	}
	if f.Attack.Region != "" {
		if _, err := deepfool.ParseRegion(f.Attack.Region); err != nil {
			return fmt.Errorf("%w: attack.region: %w", ErrInvalid, err)
		}
	}
	if err := f.AttackConfig(nil).Validate(); err != nil {
		return fmt.Errorf("%w: attack: %w", ErrInvalid, err)
	}
	if f.Eval.Workers < 0 {
		return fmt.Errorf("%w: eval.workers must be >= 0", ErrInvalid)
	}
	if _, err := parseLevel(f.Log.Level); err != nil {
		return err
	}
	switch f.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, f.Log.Format)
	}
	return nil
}

// AttackConfig converts the attack section.
func (f *File) AttackConfig(logger *slog.Logger) deepfool.Config {
	return deepfool.Config{
		NumClasses:     f.Attack.NumClasses,
		Overshoot:      f.Attack.Overshoot,
		MaxIter:        f.Attack.MaxIter,
		ApplyOvershoot: f.Attack.ApplyOvershoot,
		Verbose:        f.Attack.Verbose,
		LogEvery:       f.Attack.LogEvery,
		Logger:         logger,
	}
}

// Region returns the configured rectangle, or nil for the whole image.
func (f *File) Region() (*deepfool.Region, error) {
	if f.Attack.Region == "" {
		return nil, nil
	}
	r, err := deepfool.ParseRegion(f.Attack.Region)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Shape returns the configured image shape, zero when unset.
func (f *File) Shape() deepfool.Shape {
	if len(f.Input.Shape) != 3 {
		return deepfool.Shape{}
	}
	return deepfool.Shape{f.Input.Shape[0], f.Input.Shape[1], f.Input.Shape[2]}
}

// Device returns the parsed model device.
func (f *File) Device() oracle.Device {
	d, _ := oracle.ParseDevice(f.Model.Device)
	return d
}

// ParallelConfig converts the eval section.
func (f *File) ParallelConfig() parallel.Config {
	cfg := parallel.DefaultConfig()
	if f.Eval.Workers > 0 {
		cfg.NumWorkers = f.Eval.Workers
		cfg.Enabled = f.Eval.Workers > 1
	}
	return cfg
}

// Logger builds the slog logger described by the log section.
func (f *File) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(f.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if f.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}
	return level, nil
}

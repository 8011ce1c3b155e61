package deepfool

import "log/slog"

// Config controls a DeepFool run.
type Config struct {
	// NumClasses limits the candidate set to the top-N classes by initial activation.
	NumClasses int

	// Overshoot is the safety margin of the paper's (1+overshoot) scaling.
	// It only affects the result when ApplyOvershoot is set.
	Overshoot float64

	// MaxIter caps the number of linearization steps.
	MaxIter int

	// ApplyOvershoot scales the accumulated perturbation by (1+Overshoot) both when
	// building each perturbed image and in the returned result. Off by default, which
	// returns the raw accumulated perturbation.
	ApplyOvershoot bool

	// Verbose enables progress logging every LogEvery iterations and a final summary.
	Verbose bool

	// LogEvery is the progress logging period in iterations (0 means 100).
	LogEvery int

	// Logger receives progress and warnings. Nil means slog.Default().
	Logger *slog.Logger

	// OnIteration, when set, is called after every iteration.
	OnIteration func(IterationState)
}

// IterationState describes the engine state at the end of one iteration.
//
// Perturbation aliases the engine's accumulator and is only valid during the callback.
type IterationState struct {
	Iteration    int       // 1-based iteration counter
	Label        int       // Label predicted for the current perturbed image
	Target       int       // Winning candidate class, -1 when no direction was usable
	Step         float64   // Estimated boundary distance of the winning class
	Perturbation []float64 // Accumulated perturbation (unscaled)
}

// DefaultConfig returns the conventional DeepFool settings.
func DefaultConfig() Config {
	return Config{
		NumClasses: 10,
		Overshoot:  0.02,
		MaxIter:    50,
		LogEvery:   100,
	}
}

// Validate checks the config for values the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.NumClasses < 1:
		return &ConfigError{Field: "NumClasses", Value: c.NumClasses, Reason: "must be >= 1"}
	case c.MaxIter < 1:
		return &ConfigError{Field: "MaxIter", Value: c.MaxIter, Reason: "must be >= 1"}
	case c.Overshoot < 0:
		return &ConfigError{Field: "Overshoot", Value: c.Overshoot, Reason: "must be >= 0"}
	case c.LogEvery < 0:
		return &ConfigError{Field: "LogEvery", Value: c.LogEvery, Reason: "must be >= 0"}
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) logEvery() int {
	if c.LogEvery == 0 {
		return 100
	}
	return c.LogEvery
}

// scale is the factor applied to the accumulator when building perturbed images.
func (c Config) scale() float64 {
	if c.ApplyOvershoot {
		return 1 + c.Overshoot
	}
	return 1
}

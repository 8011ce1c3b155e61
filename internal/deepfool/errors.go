package deepfool

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNilOracle         = errors.New("deepfool: nil oracle")
	ErrInvalidImage      = errors.New("deepfool: invalid image")
	ErrInvalidConfig     = errors.New("deepfool: invalid config")
	ErrNoClasses         = errors.New("deepfool: oracle returned no activations")
	ErrActivationShape   = errors.New("deepfool: activation count changed between forward passes")
	ErrGradientShape     = errors.New("deepfool: gradient does not match image shape")
	ErrRegionOutOfBounds = errors.New("deepfool: region out of bounds")
	ErrEmptyRegion       = errors.New("deepfool: empty region")
	ErrOracle            = errors.New("deepfool: oracle failure")
)

// ConfigError reports an invalid Config field.
type ConfigError struct {
	Field  string // Field name (e.g., "NumClasses")
	Value  any    // Offending value
	Reason string // Why the value was rejected
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidConfig) hold.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Package oracle adapts concrete classifiers to deepfool.Oracle.
//
// Adapters cover born modules and ONNX graphs (gradients from the born
// autodiff tape), loom networks (gradients from loom's backward pass) and
// plain affine classifiers.
package oracle

import (
	"errors"

	"github.com/born-ml/deepfool/internal/deepfool"
)

var (
	// ErrNoForward is returned by Gradient before any successful Forward.
	ErrNoForward = errors.New("oracle: gradient requested before forward")

	// ErrClassRange is returned when a gradient is requested for a class the
	// last forward pass did not produce.
	ErrClassRange = errors.New("oracle: class out of range")

	// ErrUnknownDevice is returned by ParseDevice for unrecognized names.
	ErrUnknownDevice = errors.New("oracle: unknown device")

	// ErrDeviceUnavailable is returned when the requested device cannot be
	// initialized on this machine.
	ErrDeviceUnavailable = errors.New("oracle: device unavailable")

	// ErrUnsupportedDType is returned for tensors that are not float32, float64 or uint8.
	ErrUnsupportedDType = errors.New("oracle: unsupported tensor dtype")

	// ErrInputShape is returned when model or tensor dimensions do not match the image.
	ErrInputShape = errors.New("oracle: input shape mismatch")
)

// Compile-time checks.
var (
	_ deepfool.Oracle = (*Affine)(nil)
	_ deepfool.Oracle = (*ONNX)(nil)
	_ deepfool.Oracle = (*Loom)(nil)
)

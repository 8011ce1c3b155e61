// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package oracle provides DeepFool oracles for concrete classifiers.
//
// Available adapters:
//   - [NewModule]: any Born nn.Module on an autodiff backend
//   - [NewONNX]: ONNX graphs executed by Born
//   - [NewLoom]/[LoadLoom]: openfluke/loom grid networks
//   - [NewAffine]: the analytic classifier f(x) = Wx + b
//
// Example:
//
//	backend, release, err := oracle.NewBackend(oracle.CPU)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer release()
//
//	model := nn.NewSequential[oracle.Backend](
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[oracle.Backend](),
//	    nn.NewLinear(128, 10, backend),
//	)
//	o := oracle.NewModule(model, backend, oracle.Options{Flatten: true})
package oracle

import (
	"github.com/born-ml/born/tensor"
	loomnn "github.com/openfluke/loom/nn"

	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/oracle"
)

// Device selects where tensor oracles run.
type Device = oracle.Device

// Supported devices.
const (
	CPU    = oracle.CPU
	WebGPU = oracle.WebGPU
)

// Backend is a Born backend with a gradient tape.
type Backend = oracle.Backend

// Options control how images are fed to tensor models.
type Options = oracle.Options

// Classifier is the part of a Born nn.Module an oracle needs.
type Classifier[B tensor.Backend] = oracle.Classifier[B]

// Module is an oracle over a Born classifier.
type Module[B Backend] = oracle.Module[B]

// ONNX is an oracle over an ONNX graph.
type ONNX = oracle.ONNX

// Loom is an oracle over a loom network.
type Loom = oracle.Loom

// Affine is the oracle f(x) = Wx + b.
type Affine = oracle.Affine

// Errors returned by adapters.
var (
	ErrNoForward         = oracle.ErrNoForward
	ErrClassRange        = oracle.ErrClassRange
	ErrUnknownDevice     = oracle.ErrUnknownDevice
	ErrDeviceUnavailable = oracle.ErrDeviceUnavailable
	ErrUnsupportedDType  = oracle.ErrUnsupportedDType
	ErrInputShape        = oracle.ErrInputShape
)

// ParseDevice parses "cpu" or "webgpu".
func ParseDevice(s string) (Device, error) {
	return oracle.ParseDevice(s)
}

// NewBackend creates an autodiff backend on device. Call release when done.
func NewBackend(device Device) (backend Backend, release func(), err error) {
	return oracle.NewBackend(device)
}

// NewModule wraps a Born classifier built on backend.
func NewModule[B Backend](model Classifier[B], backend B, opts Options) *Module[B] {
	return oracle.NewModule(model, backend, opts)
}

// NewONNX loads an ONNX model onto device.
func NewONNX(path string, device Device, opts Options) (*ONNX, error) {
	return oracle.NewONNX(path, device, opts)
}

// NewONNXFromBytes loads a serialized ONNX model onto device.
func NewONNXFromBytes(data []byte, device Device, opts Options) (*ONNX, error) {
	return oracle.NewONNXFromBytes(data, device, opts)
}

// NewLoom wraps a loom network.
func NewLoom(net *loomnn.Network) (*Loom, error) {
	return oracle.NewLoom(net)
}

// LoadLoom loads a loom model bundle.
func LoadLoom(path, id string) (*Loom, error) {
	return oracle.LoadLoom(path, id)
}

// NewAffine builds the oracle f(x) = Wx + b.
func NewAffine(weights [][]float64, bias []float64) (*Affine, error) {
	return oracle.NewAffine(weights, bias)
}

// LoadImages reads images from a safetensors or GGUF tensor.
func LoadImages(path, name string, shape deepfool.Shape) ([]*deepfool.Image, error) {
	return oracle.LoadImages(path, name, shape)
}

// WriteImages stores images as a float32 safetensors tensor.
func WriteImages(path, name string, images []*deepfool.Image) error {
	return oracle.WriteImages(path, name, images)
}

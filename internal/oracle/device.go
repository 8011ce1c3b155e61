package oracle

import (
	"fmt"
	"strings"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
)

// Device selects where tensor oracles run.
type Device string

// Supported devices.
const (
	CPU    Device = "cpu"
	WebGPU Device = "webgpu"
)

// ParseDevice parses a device name. The empty string selects CPU.
func ParseDevice(s string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cpu":
		return CPU, nil
	case "webgpu", "gpu":
		return WebGPU, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDevice, s)
}

func (d Device) String() string { return string(d) }

// Backend is a born backend that records operations on a gradient tape.
//
// Both autodiff.New(cpu.New()) and autodiff.New(webgpu) satisfy it.
type Backend interface {
	tensor.Backend
	Tape() *autodiff.GradientTape
}

// NewBackend creates an autodiff backend on the given device.
// The returned release function frees device resources and is never nil.
func NewBackend(device Device) (Backend, func(), error) {
	switch device {
	case "", CPU:
		return autodiff.New(cpu.New()), func() {}, nil
	case WebGPU:
		return newGPUBackend()
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDevice, string(device))
}

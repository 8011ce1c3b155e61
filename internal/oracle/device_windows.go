//go:build windows

package oracle

import (
	"fmt"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/webgpu"
)

func newGPUBackend() (Backend, func(), error) {
	if !webgpu.IsAvailable() {
		return nil, nil, fmt.Errorf("%w: no WebGPU adapter", ErrDeviceUnavailable)
	}
	gpu, err := webgpu.New()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	return autodiff.New(gpu), gpu.Release, nil
}

//go:build !windows

package oracle

import "fmt"

func newGPUBackend() (Backend, func(), error) {
	return nil, nil, fmt.Errorf("%w: born WebGPU backend requires windows", ErrDeviceUnavailable)
}

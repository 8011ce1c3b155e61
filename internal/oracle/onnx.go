package oracle

import (
	"fmt"

	"github.com/born-ml/born/onnx"
	"github.com/born-ml/deepfool/internal/deepfool"
)

// ONNX is an Oracle over an ONNX graph executed by born. The graph runs on an
// autodiff backend, so every op born can differentiate contributes to the
// gradient.
type ONNX struct {
	model   onnx.Model
	backend Backend
	release func()
	opts    Options
	s       session
}

// NewONNX loads an ONNX model from path onto device.
func NewONNX(path string, device Device, opts Options) (*ONNX, error) {
	o, err := newONNX(device, opts, func(b Backend) (onnx.Model, error) {
		return onnx.Load(path, b)
	})
	if err != nil {
		return nil, fmt.Errorf("load onnx %s: %w", path, err)
	}
	return o, nil
}

// NewONNXFromBytes loads a serialized ONNX model onto device.
func NewONNXFromBytes(data []byte, device Device, opts Options) (*ONNX, error) {
	o, err := newONNX(device, opts, func(b Backend) (onnx.Model, error) {
		return onnx.LoadFromBytes(data, b)
	})
	if err != nil {
		return nil, fmt.Errorf("load onnx: %w", err)
	}
	return o, nil
}

func newONNX(device Device, opts Options, load func(Backend) (onnx.Model, error)) (*ONNX, error) {
	backend, release, err := NewBackend(device)
	if err != nil {
		return nil, err
	}
	model, err := load(backend)
	if err != nil {
		release()
		return nil, err
	}
	if n := len(model.InputNames()); n != 1 {
		release()
		return nil, fmt.Errorf("%w: onnx model has %d inputs, want 1", ErrInputShape, n)
	}
	return &ONNX{
		model:   model,
		backend: backend,
		release: release,
		opts:    opts,
		s:       session{backend: backend},
	}, nil
}

// Forward implements deepfool.Oracle.
func (o *ONNX) Forward(img *deepfool.Image) (act []float64, err error) {
	o.s.begin()
	defer o.s.stop()
	defer func() {
		if r := recover(); r != nil {
			act, err = nil, fmt.Errorf("%w: forward: %v", deepfool.ErrOracle, r)
		}
	}()

	x, err := newInput(img, o.opts.Flatten, o.backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputShape, err)
	}
	out, err := o.model.Forward(x.Raw())
	if err != nil {
		return nil, err
	}
	return o.s.finish(x.Raw(), out)
}

// Gradient implements deepfool.Oracle.
func (o *ONNX) Gradient(class int) (grad []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			grad, err = nil, fmt.Errorf("%w: backward: %v", deepfool.ErrOracle, r)
		}
	}()
	return o.s.gradient(class)
}

// Close releases the device.
func (o *ONNX) Close() error {
	o.release()
	return nil
}

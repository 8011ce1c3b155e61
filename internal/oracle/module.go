package oracle

import (
	"fmt"

	"github.com/born-ml/born/tensor"
	"github.com/born-ml/deepfool/internal/deepfool"
)

// Classifier is the part of a born nn.Module an oracle needs.
// It maps a batch of one image to a [1, classes] tensor of logits.
type Classifier[B tensor.Backend] interface {
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// Options control how images are fed to tensor models.
type Options struct {
	// Flatten feeds images as [1, C*H*W] instead of [1, C, H, W].
	// Models that start with a Linear layer need it.
	Flatten bool
}

// Module is an Oracle over a born classifier. Gradients come from the
// backend's autodiff tape.
type Module[B Backend] struct {
	model   Classifier[B]
	backend B
	opts    Options
	s       session
}

// NewModule wraps model. The backend must be the one model was built on.
func NewModule[B Backend](model Classifier[B], backend B, opts Options) *Module[B] {
	return &Module[B]{
		model:   model,
		backend: backend,
		opts:    opts,
		s:       session{backend: backend},
	}
}

// Forward implements deepfool.Oracle.
func (m *Module[B]) Forward(img *deepfool.Image) (act []float64, err error) {
	m.s.begin()
	defer m.s.stop()
	// born layers panic on shape mismatches.
	defer func() {
		if r := recover(); r != nil {
			act, err = nil, fmt.Errorf("%w: forward: %v", deepfool.ErrOracle, r)
		}
	}()

	x, err := newInput(img, m.opts.Flatten, m.backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputShape, err)
	}
	out := m.model.Forward(x)
	return m.s.finish(x.Raw(), out.Raw())
}

// Gradient implements deepfool.Oracle.
func (m *Module[B]) Gradient(class int) (grad []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			grad, err = nil, fmt.Errorf("%w: backward: %v", deepfool.ErrOracle, r)
		}
	}()
	return m.s.gradient(class)
}

package oracle

import (
	"errors"
	"fmt"

	loomnn "github.com/openfluke/loom/nn"

	"github.com/born-ml/deepfool/internal/deepfool"
)

// Loom is an Oracle over a loom grid network. The network takes the
// flattened image as input and produces one activation per class.
//
// Evaluation uses loom's stepping API: a forward pass is TotalLayers steps
// over a fresh StepState, after which every layer holds the settled
// activations that StepBackward differentiates.
type Loom struct {
	net     *loomnn.Network
	state   *loomnn.StepState
	classes int
}

// NewLoom wraps net. The network runs with batch size one.
func NewLoom(net *loomnn.Network) (*Loom, error) {
	if net == nil {
		return nil, errors.New("oracle: nil loom network")
	}
	net.BatchSize = 1
	return &Loom{net: net}, nil
}

// LoadLoom loads the model id from a loom JSON bundle and wraps it.
func LoadLoom(path, id string) (*Loom, error) {
	net, err := loomnn.LoadModel(path, id)
	if err != nil {
		return nil, fmt.Errorf("load loom model %s from %s: %w", id, path, err)
	}
	return NewLoom(net)
}

// Forward implements deepfool.Oracle.
func (l *Loom) Forward(img *deepfool.Image) ([]float64, error) {
	input := img.Float32()
	state := l.net.InitStepState(len(input))
	state.SetInput(input)
	for range l.net.TotalLayers() {
		l.net.StepForward(state)
	}

	out := state.GetOutput()
	l.state, l.classes = state, len(out)
	return widen(out), nil
}

// Gradient implements deepfool.Oracle.
func (l *Loom) Gradient(class int) ([]float64, error) {
	if l.state == nil {
		return nil, ErrNoForward
	}
	if class < 0 || class >= l.classes {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrClassRange, class, l.classes)
	}

	seed := make([]float32, l.classes)
	seed[class] = 1
	grad, _ := l.net.StepBackward(l.state, seed)
	return widen(grad), nil
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

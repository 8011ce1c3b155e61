package oracle

import (
	"fmt"

	"github.com/born-ml/born/tensor"
	"github.com/born-ml/deepfool/internal/deepfool"
)

// session keeps the tape of the most recent forward pass so that one
// gradient per class can be replayed from it.
type session struct {
	backend Backend
	input   *tensor.RawTensor
	output  *tensor.RawTensor
	classes int
}

// begin clears the tape and starts recording a new forward pass.
func (s *session) begin() {
	tape := s.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	s.input, s.output, s.classes = nil, nil, 0
}

// stop ends recording. Safe to call more than once.
func (s *session) stop() {
	s.backend.Tape().StopRecording()
}

// finish flattens logits with a recorded reshape, so the logits are the
// output of the last op on the tape, and returns them as activations.
func (s *session) finish(input, logits *tensor.RawTensor) ([]float64, error) {
	out := s.backend.Reshape(logits, tensor.Shape{logits.NumElements()})
	s.stop()

	act, err := toFloat64(out)
	if err != nil {
		return nil, err
	}
	s.input, s.output, s.classes = input, out, len(act)
	return act, nil
}

// gradient seeds the tape with a one-hot vector for class and returns the
// gradient that reaches the recorded input. An input the graph never
// touched gets a zero gradient.
func (s *session) gradient(class int) ([]float64, error) {
	if s.output == nil {
		return nil, ErrNoForward
	}
	if class < 0 || class >= s.classes {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrClassRange, class, s.classes)
	}

	seed, err := tensor.NewRaw(s.output.Shape(), s.output.DType(), s.backend.Device())
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	switch s.output.DType() {
	case tensor.Float32:
		seed.AsFloat32()[class] = 1
	case tensor.Float64:
		seed.AsFloat64()[class] = 1
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, s.output.DType())
	}

	grads := s.backend.Tape().Backward(seed, s.backend)
	g, ok := grads[s.input]
	if !ok {
		return make([]float64, s.input.NumElements()), nil
	}
	return toFloat64(g)
}

// newInput builds a float32 batch-of-one tensor from img.
func newInput[B tensor.Backend](img *deepfool.Image, flatten bool, backend B) (*tensor.Tensor[float32, B], error) {
	shape := tensor.Shape{1, img.Shape[0], img.Shape[1], img.Shape[2]}
	if flatten {
		shape = tensor.Shape{1, img.Shape.NumElements()}
	}
	return tensor.FromSlice(img.Float32(), shape, backend)
}

func toFloat64(raw *tensor.RawTensor) ([]float64, error) {
	switch raw.DType() {
	case tensor.Float32:
		src := raw.AsFloat32()
		out := make([]float64, len(src))
		for i, v := range src {
			out[i] = float64(v)
		}
		return out, nil
	case tensor.Float64:
		return append([]float64(nil), raw.AsFloat64()...), nil
	case tensor.Uint8:
		src := raw.AsUint8()
		out := make([]float64, len(src))
		for i, v := range src {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, raw.DType())
}

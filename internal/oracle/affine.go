package oracle

import (
	"errors"
	"fmt"

	"github.com/born-ml/deepfool/internal/deepfool"
)

// Affine is the classifier f(x) = Wx + b. Its gradients are exact, which
// makes it the reference oracle for checking the attack itself.
type Affine struct {
	weights [][]float64
	bias    []float64
	pixels  int
}

// NewAffine builds an affine oracle from one weight row per class.
// A nil bias means zero.
func NewAffine(weights [][]float64, bias []float64) (*Affine, error) {
	if len(weights) == 0 {
		return nil, errors.New("oracle: affine needs at least one class")
	}
	pixels := len(weights[0])
	for k, row := range weights {
		if len(row) != pixels {
			return nil, fmt.Errorf("%w: row %d has %d weights, want %d", ErrInputShape, k, len(row), pixels)
		}
	}
	if bias == nil {
		bias = make([]float64, len(weights))
	}
	if len(bias) != len(weights) {
		return nil, fmt.Errorf("%w: %d biases for %d classes", ErrInputShape, len(bias), len(weights))
	}
	return &Affine{weights: weights, bias: bias, pixels: pixels}, nil
}

// Forward implements deepfool.Oracle.
func (a *Affine) Forward(img *deepfool.Image) ([]float64, error) {
	if len(img.Data) != a.pixels {
		return nil, fmt.Errorf("%w: image has %d elements, want %d", ErrInputShape, len(img.Data), a.pixels)
	}
	out := make([]float64, len(a.weights))
	for k, row := range a.weights {
		sum := a.bias[k]
		for i, w := range row {
			sum += w * img.Data[i]
		}
		out[k] = sum
	}
	return out, nil
}

// Gradient implements deepfool.Oracle.
func (a *Affine) Gradient(class int) ([]float64, error) {
	if class < 0 || class >= len(a.weights) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrClassRange, class, len(a.weights))
	}
	return append([]float64(nil), a.weights[class]...), nil
}

package deepfool

import (
	"errors"
	"math/rand"
)

// linearOracle is f(x) = Wx + b with exact gradients.
type linearOracle struct {
	weights [][]float64 // [classes][pixels]
	bias    []float64

	forwards  int
	requested map[int]int // gradient calls per class
}

func newLinearOracle(weights [][]float64, bias []float64) *linearOracle {
	return &linearOracle{weights: weights, bias: bias, requested: make(map[int]int)}
}

// randomLinearOracle builds a classes×pixels oracle from a seeded source.
func randomLinearOracle(rng *rand.Rand, classes, pixels int) *linearOracle {
	w := make([][]float64, classes)
	b := make([]float64, classes)
	for k := range w {
		w[k] = make([]float64, pixels)
		for i := range w[k] {
			w[k][i] = rng.NormFloat64()
		}
		b[k] = rng.NormFloat64()
	}
	return newLinearOracle(w, b)
}

func (o *linearOracle) Forward(img *Image) ([]float64, error) {
	o.forwards++
	out := make([]float64, len(o.weights))
	for k, row := range o.weights {
		sum := o.bias[k]
		for i, w := range row {
			sum += w * img.Data[i]
		}
		out[k] = sum
	}
	return out, nil
}

func (o *linearOracle) Gradient(class int) ([]float64, error) {
	o.requested[class]++
	return append([]float64(nil), o.weights[class]...), nil
}

// constOracle scores every class the same and has zero gradients.
type constOracle struct {
	classes, pixels int
}

func (o constOracle) Forward(*Image) ([]float64, error) {
	out := make([]float64, o.classes)
	for i := range out {
		out[i] = 1
	}
	return out, nil
}

func (o constOracle) Gradient(int) ([]float64, error) {
	return make([]float64, o.pixels), nil
}

// fixedOracle returns the same activations for every input.
type fixedOracle struct {
	activations []float64
	pixels      int
}

func (o fixedOracle) Forward(*Image) ([]float64, error) {
	return append([]float64(nil), o.activations...), nil
}

func (o fixedOracle) Gradient(class int) ([]float64, error) {
	g := make([]float64, o.pixels)
	for i := range g {
		g[i] = float64(class + 1)
	}
	return g, nil
}

var errBoom = errors.New("boom")

// failingOracle fails Forward after okForwards successful calls.
type failingOracle struct {
	inner      Oracle
	okForwards int
	failGrad   bool
	shortGrad  bool
}

func (o *failingOracle) Forward(img *Image) ([]float64, error) {
	if o.okForwards == 0 {
		return nil, errBoom
	}
	o.okForwards--
	return o.inner.Forward(img)
}

func (o *failingOracle) Gradient(class int) ([]float64, error) {
	if o.failGrad {
		return nil, errBoom
	}
	g, err := o.inner.Gradient(class)
	if o.shortGrad {
		return g[:len(g)-1], err
	}
	return g, err
}

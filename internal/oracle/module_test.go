package oracle

import (
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/deepfool/internal/deepfool"
)

type cpuBackend = *autodiff.Backend[*cpu.Backend]

var (
	linearWeights = [][]float32{
		{1, 2, 3, 4},
		{-1, 0.5, 2, 1},
		{0, 0, -3, 1},
	}
	linearBias = []float32{0.5, 1, -2}
)

// newLinearModule builds a 4->3 born Linear layer with fixed parameters.
func newLinearModule(t *testing.T, flatten bool) *Module[cpuBackend] {
	t.Helper()

	backend := autodiff.New(cpu.New())
	lin := nn.NewLinear(4, 3, backend)

	w := lin.Weight().Tensor().Raw().AsFloat32()
	require.Len(t, w, 12)
	for k, row := range linearWeights {
		copy(w[k*4:], row)
	}
	copy(lin.Bias().Tensor().Raw().AsFloat32(), linearBias)

	return NewModule[cpuBackend](lin, backend, Options{Flatten: flatten})
}

func TestModule_ForwardGradient(t *testing.T) {
	m := newLinearModule(t, true)
	img, err := deepfool.NewImage(deepfool.Shape{1, 2, 2}, []float64{1, 1, 1, 1})
	require.NoError(t, err)

	act, err := m.Forward(img)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10.5, 3.5, -4}, act, 1e-5)

	for k, row := range linearWeights {
		grad, err := m.Gradient(k)
		require.NoError(t, err)
		require.Len(t, grad, 4)
		for i, w := range row {
			assert.InDelta(t, float64(w), grad[i], 1e-5, "d f_%d / d x_%d", k, i)
		}
	}

	// Replaying the tape does not disturb later classes.
	again, err := m.Gradient(0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4}, again, 1e-5)
}

func TestModule_Errors(t *testing.T) {
	m := newLinearModule(t, true)

	_, err := m.Gradient(0)
	assert.ErrorIs(t, err, ErrNoForward)

	_, err = m.Forward(deepfool.Zeros(deepfool.Shape{1, 2, 2}))
	require.NoError(t, err)
	_, err = m.Gradient(3)
	assert.ErrorIs(t, err, ErrClassRange)
	_, err = m.Gradient(-1)
	assert.ErrorIs(t, err, ErrClassRange)

	// Linear panics on a [1,1,2,2] input.
	unflat := newLinearModule(t, false)
	_, err = unflat.Forward(deepfool.Zeros(deepfool.Shape{1, 2, 2}))
	assert.ErrorIs(t, err, deepfool.ErrOracle)
}

func TestModule_Attack(t *testing.T) {
	m := newLinearModule(t, true)
	img, err := deepfool.NewImage(deepfool.Shape{1, 2, 2}, []float64{1, 1, 1, 1})
	require.NoError(t, err)

	cfg := deepfool.DefaultConfig()
	cfg.NumClasses = 3
	cfg.ApplyOvershoot = true

	res, err := deepfool.Attack(img, m, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.OriginalLabel)
	assert.True(t, res.Fooled())
	assert.Positive(t, res.L2())
}

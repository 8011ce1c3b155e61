package oracle

import (
	"testing"

	loomnn "github.com/openfluke/loom/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/deepfool/internal/deepfool"
)

// newLoomDense builds a single 4->2 dense layer with LeakyReLU, whose
// derivative is 1 for non-negative pre-activations.
func newLoomDense(t *testing.T) *Loom {
	t.Helper()

	net := loomnn.NewNetwork(4, 1, 1, 1)
	net.SetLayer(0, 0, 0, loomnn.LayerConfig{
		Type:         loomnn.LayerDense,
		Activation:   loomnn.ActivationLeakyReLU,
		InputHeight:  4,
		OutputHeight: 2,
		// Kernel[i*out+o]: class 0 weights 1,2,3,4 and class 1 weights -1,0.5,2,1.
		Kernel: []float32{1, -1, 2, 0.5, 3, 2, 4, 1},
		Bias:   []float32{0.5, 1},
	})

	l, err := NewLoom(net)
	require.NoError(t, err)
	return l
}

func TestLoom_ForwardGradient(t *testing.T) {
	l := newLoomDense(t)

	_, err := l.Gradient(0)
	assert.ErrorIs(t, err, ErrNoForward)

	img, err := deepfool.NewImage(deepfool.Shape{1, 2, 2}, []float64{1, 1, 1, 1})
	require.NoError(t, err)

	act, err := l.Forward(img)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10.5, 4.5}, act, 1e-5)

	g0, err := l.Gradient(0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4}, g0, 1e-5)

	g1, err := l.Gradient(1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-1, 0.5, 2, 1}, g1, 1e-5)

	_, err = l.Gradient(2)
	assert.ErrorIs(t, err, ErrClassRange)
}

func TestNewLoom_Nil(t *testing.T) {
	_, err := NewLoom(nil)
	assert.Error(t, err)
}

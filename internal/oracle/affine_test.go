package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/deepfool/internal/deepfool"
)

func TestNewAffine(t *testing.T) {
	_, err := NewAffine(nil, nil)
	assert.Error(t, err)

	_, err = NewAffine([][]float64{{1, 2}, {3}}, nil)
	assert.ErrorIs(t, err, ErrInputShape)

	_, err = NewAffine([][]float64{{1, 2}}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrInputShape)
}

func TestAffine(t *testing.T) {
	a, err := NewAffine([][]float64{{1, -1}, {2, 0.5}}, []float64{0, 1})
	require.NoError(t, err)

	img, err := deepfool.NewImage(deepfool.Shape{1, 1, 2}, []float64{3, 1})
	require.NoError(t, err)

	act, err := a.Forward(img)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 7.5}, act)

	grad, err := a.Gradient(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0.5}, grad)

	grad[0] = 100
	again, err := a.Gradient(1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, again[0], "gradients are fresh buffers")

	_, err = a.Gradient(2)
	assert.ErrorIs(t, err, ErrClassRange)

	_, err = a.Forward(deepfool.Zeros(deepfool.Shape{1, 1, 3}))
	assert.ErrorIs(t, err, ErrInputShape)
}

package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevice(t *testing.T) {
	tests := []struct {
		in   string
		want Device
	}{
		{"", CPU},
		{"cpu", CPU},
		{" CPU ", CPU},
		{"webgpu", WebGPU},
		{"gpu", WebGPU},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDevice(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDevice("tpu")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestNewBackend_CPU(t *testing.T) {
	backend, release, err := NewBackend(CPU)
	require.NoError(t, err)
	require.NotNil(t, release)
	defer release()

	assert.NotNil(t, backend.Tape())

	_, _, err = NewBackend("tpu")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

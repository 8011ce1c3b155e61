package oracle

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/deepfool/internal/deepfool"
)

// protoMsg appends protobuf fields in wire format.
type protoMsg struct {
	data []byte
}

func (m *protoMsg) varint(field int, v int64) *protoMsg {
	m.data = binary.AppendUvarint(m.data, uint64(field<<3))
	m.data = binary.AppendUvarint(m.data, uint64(v))
	return m
}

func (m *protoMsg) bytes(field int, b []byte) *protoMsg {
	m.data = binary.AppendUvarint(m.data, uint64(field<<3|2))
	m.data = binary.AppendUvarint(m.data, uint64(len(b)))
	m.data = append(m.data, b...)
	return m
}

func (m *protoMsg) str(field int, s string) *protoMsg {
	return m.bytes(field, []byte(s))
}

// valueInfo encodes a float32 ValueInfoProto with a dynamic batch dimension.
func valueInfo(name string, width int64) []byte {
	batch := (&protoMsg{}).str(2, "batch").data
	dim := (&protoMsg{}).varint(1, width).data
	shape := (&protoMsg{}).bytes(1, batch).bytes(1, dim).data
	tensorType := (&protoMsg{}).varint(1, 1).bytes(2, shape).data
	typ := (&protoMsg{}).bytes(1, tensorType).data
	return (&protoMsg{}).str(1, name).bytes(2, typ).data
}

// buildMatMulModel encodes Y = MatMul(X, W) with X [N,4] and W the transpose of
// linearWeights.
func buildMatMulModel() []byte {
	raw := make([]byte, 0, 4*12)
	for i := range 4 {
		for k := range linearWeights {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(linearWeights[k][i]))
		}
	}
	weight := (&protoMsg{}).varint(1, 4).varint(1, 3).varint(2, 1).str(8, "W").bytes(9, raw).data
	node := (&protoMsg{}).str(1, "X").str(1, "W").str(2, "Y").str(4, "MatMul").data

	graph := (&protoMsg{}).
		bytes(1, node).
		str(2, "linear").
		bytes(5, weight).
		bytes(11, valueInfo("X", 4)).
		bytes(12, valueInfo("Y", 3)).
		data
	opset := (&protoMsg{}).str(1, "").varint(2, 13).data
	return (&protoMsg{}).varint(1, 7).bytes(7, graph).bytes(8, opset).data
}

func TestONNX_ForwardGradient(t *testing.T) {
	o, err := NewONNXFromBytes(buildMatMulModel(), CPU, Options{Flatten: true})
	require.NoError(t, err)
	defer o.Close()

	img, err := deepfool.NewImage(deepfool.Shape{1, 2, 2}, []float64{1, 1, 1, 1})
	require.NoError(t, err)

	act, err := o.Forward(img)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 2.5, -2}, act, 1e-5)

	for k, row := range linearWeights {
		grad, err := o.Gradient(k)
		require.NoError(t, err)
		require.Len(t, grad, 4)
		for i, w := range row {
			assert.InDelta(t, float64(w), grad[i], 1e-5, "d f_%d / d x_%d", k, i)
		}
	}

	_, err = o.Gradient(3)
	assert.ErrorIs(t, err, ErrClassRange)
}

func TestONNX_Attack(t *testing.T) {
	o, err := NewONNXFromBytes(buildMatMulModel(), CPU, Options{Flatten: true})
	require.NoError(t, err)
	defer o.Close()

	img, err := deepfool.NewImage(deepfool.Shape{1, 2, 2}, []float64{1, 1, 1, 1})
	require.NoError(t, err)
	cfg := deepfool.DefaultConfig()
	cfg.ApplyOvershoot = true

	res, err := deepfool.Attack(img, o, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, res.OriginalLabel)
	assert.True(t, res.Fooled())
}

func TestNewONNX_Errors(t *testing.T) {
	_, err := NewONNX(filepath.Join(t.TempDir(), "missing.onnx"), CPU, Options{})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "model.onnx")
	require.NoError(t, os.WriteFile(path, buildMatMulModel(), 0o600))
	_, err = NewONNX(path, Device("tpu"), Options{})
	assert.ErrorIs(t, err, ErrUnknownDevice)

	o, err := NewONNX(path, CPU, Options{Flatten: true})
	require.NoError(t, err)
	assert.NoError(t, o.Close())
}

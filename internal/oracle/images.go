package oracle

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/loader"
	"github.com/born-ml/deepfool/internal/deepfool"
)

// LoadImages reads a batch of images from a safetensors or GGUF file.
//
// The tensor is taken by name, or is the file's only tensor when name is
// empty. A rank-4 tensor is read as [N, C, H, W] and a rank-3 tensor as a
// single [C, H, W] image. A non-zero shape overrides the tensor's own
// dimensions, in which case the element count must be a multiple of it.
func LoadImages(path, name string, shape deepfool.Shape) ([]*deepfool.Image, error) {
	reader, err := loader.OpenModel(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	if name == "" {
		names := reader.TensorNames()
		if len(names) != 1 {
			return nil, fmt.Errorf("%s holds %d tensors, name one of %v", path, len(names), names)
		}
		name = names[0]
	}

	raw, err := reader.LoadTensor(name, cpu.New())
	if err != nil {
		return nil, fmt.Errorf("load tensor %q: %w", name, err)
	}
	data, err := toFloat64(raw)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", name, err)
	}

	if shape == (deepfool.Shape{}) {
		dims := raw.Shape()
		switch len(dims) {
		case 3:
			shape = deepfool.Shape{dims[0], dims[1], dims[2]}
		case 4:
			shape = deepfool.Shape{dims[1], dims[2], dims[3]}
		default:
			return nil, fmt.Errorf("%w: tensor %q has shape %v, want [N,C,H,W] or [C,H,W]", ErrInputShape, name, dims)
		}
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	per := shape.NumElements()
	if len(data) == 0 || len(data)%per != 0 {
		return nil, fmt.Errorf("%w: %d elements is not a multiple of %s", ErrInputShape, len(data), shape)
	}

	images := make([]*deepfool.Image, 0, len(data)/per)
	for chunk := range slices.Chunk(data, per) {
		images = append(images, &deepfool.Image{Shape: shape, Data: chunk})
	}
	return images, nil
}

// safetensors header entry, as read by born's loader.
type tensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteImages stores images as one float32 [N, C, H, W] safetensors tensor
// that LoadImages can read back. All images must share a shape.
func WriteImages(path, name string, images []*deepfool.Image) error {
	if len(images) == 0 {
		return fmt.Errorf("%w: no images to write", ErrInputShape)
	}
	shape := images[0].Shape
	for i, img := range images {
		if err := img.Validate(); err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		if img.Shape != shape {
			return fmt.Errorf("%w: image %d is %s, want %s", ErrInputShape, i, img.Shape, shape)
		}
	}

	size := int64(len(images) * shape.NumElements() * 4)
	header, err := json.Marshal(map[string]any{
		"__metadata__": map[string]string{"format": "deepfool"},
		name: tensorHeader{
			DType:       "F32",
			Shape:       []int{len(images), shape[0], shape[1], shape[2]},
			DataOffsets: [2]int64{0, size},
		},
	})
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(header)))
	if _, err := w.Write(buf[:]); err != nil {
		f.Close()
		return err
	}
	if _, err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, img := range images {
		for _, v := range img.Data {
			binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(float32(v)))
			if _, err := w.Write(buf[:4]); err != nil {
				f.Close()
				return err
			}
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

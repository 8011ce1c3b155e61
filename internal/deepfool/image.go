package deepfool

import (
	"fmt"
	"math"
)

// Shape is the shape of an image tensor: channels, height, width.
type Shape [3]int

// NumElements returns the number of scalars in a tensor of this shape.
func (s Shape) NumElements() int {
	return s[0] * s[1] * s[2]
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("%w: dimension %d is %d (must be > 0)", ErrInvalidImage, i, dim)
		}
	}
	return nil
}

// String returns a human-readable representation like "3x32x32".
func (s Shape) String() string {
	return fmt.Sprintf("%dx%dx%d", s[0], s[1], s[2])
}

// Image is a rank-3 (channels × height × width) tensor stored row-major.
//
// Element [c, x, y] lives at Data[c*H*W + x*W + y].
type Image struct {
	Shape Shape
	Data  []float64
}

// NewImage creates an image from data. The slice is copied.
func NewImage(shape Shape, data []float64) (*Image, error) {
	img := &Image{Shape: shape, Data: append([]float64(nil), data...)}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// Zeros creates an image filled with zeros.
func Zeros(shape Shape) *Image {
	n := 0
	if shape.Validate() == nil {
		n = shape.NumElements()
	}
	return &Image{Shape: shape, Data: make([]float64, n)}
}

// Validate checks that the shape is positive and matches the data length.
func (img *Image) Validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if err := img.Shape.Validate(); err != nil {
		return err
	}
	if len(img.Data) != img.Shape.NumElements() {
		return fmt.Errorf("%w: shape %s needs %d values, got %d",
			ErrInvalidImage, img.Shape, img.Shape.NumElements(), len(img.Data))
	}
	return nil
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	return &Image{Shape: img.Shape, Data: append([]float64(nil), img.Data...)}
}

// Index returns the flat offset of element [c, x, y].
func (img *Image) Index(c, x, y int) int {
	return (c*img.Shape[1]+x)*img.Shape[2] + y
}

// At returns element [c, x, y].
func (img *Image) At(c, x, y int) float64 {
	return img.Data[img.Index(c, x, y)]
}

// Set assigns element [c, x, y].
func (img *Image) Set(v float64, c, x, y int) {
	img.Data[img.Index(c, x, y)] = v
}

// Norm returns the Euclidean norm of the flattened image.
func (img *Image) Norm() float64 {
	return norm(img.Data)
}

// Float32 returns the data converted to float32, the dtype oracles usually run in.
func (img *Image) Float32() []float32 {
	out := make([]float32, len(img.Data))
	for i, v := range img.Data {
		out[i] = float32(v)
	}
	return out
}

// norm returns the L2 norm of v.
func norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

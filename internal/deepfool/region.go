package deepfool

import (
	"fmt"
	"strconv"
	"strings"
)

// Region is a rectangle [X1, X2) × [Y1, Y2) of an image.
//
// X indexes the height axis and Y the width axis; the rectangle spans every channel.
type Region struct {
	X1, Y1, X2, Y2 int
}

// FullRegion returns the region covering the whole image.
func FullRegion(shape Shape) Region {
	return Region{X1: 0, Y1: 0, X2: shape[1], Y2: shape[2]}
}

// ParseRegion parses "x1,y1,x2,y2".
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: expected x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	return Region{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

// String returns "x1,y1,x2,y2", the format accepted by ParseRegion.
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X1, r.Y1, r.X2, r.Y2)
}

// Empty reports whether the rectangle contains no pixels.
func (r Region) Empty() bool {
	return r.X1 >= r.X2 || r.Y1 >= r.Y2
}

// Area returns the number of pixels per channel inside the rectangle.
func (r Region) Area() int {
	if r.Empty() {
		return 0
	}
	return (r.X2 - r.X1) * (r.Y2 - r.Y1)
}

// Contains reports whether pixel (x, y) lies inside the rectangle.
func (r Region) Contains(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// Validate checks the region against an image shape.
// It returns ErrRegionOutOfBounds or ErrEmptyRegion.
func (r Region) Validate(shape Shape) error {
	if err := r.checkBounds(shape); err != nil {
		return err
	}
	if r.Empty() {
		return fmt.Errorf("%w: %s", ErrEmptyRegion, r)
	}
	return nil
}

func (r Region) checkBounds(shape Shape) error {
	switch {
	case r.X1 < 0 || r.Y1 < 0:
		return fmt.Errorf("%w: %s has negative coordinates", ErrRegionOutOfBounds, r)
	case r.X1 > r.X2 || r.Y1 > r.Y2:
		return fmt.Errorf("%w: %s is inverted", ErrRegionOutOfBounds, r)
	case r.X2 > shape[1] || r.Y2 > shape[2]:
		return fmt.Errorf("%w: %s exceeds image %dx%d", ErrRegionOutOfBounds, r, shape[1], shape[2])
	}
	return nil
}

// Mask returns a 0/1 tensor of the given shape, 1 inside the rectangle for every channel.
func (r Region) Mask(shape Shape) []float64 {
	h, w := shape[1], shape[2]
	mask := make([]float64, shape.NumElements())
	for c := 0; c < shape[0]; c++ {
		for x := max(r.X1, 0); x < min(r.X2, h); x++ {
			row := (c*h + x) * w
			for y := max(r.Y1, 0); y < min(r.Y2, w); y++ {
				mask[row+y] = 1
			}
		}
	}
	return mask
}

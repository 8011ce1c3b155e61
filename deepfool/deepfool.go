// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package deepfool computes minimal adversarial perturbations with the
// DeepFool algorithm.
//
// Given a differentiable classifier (an [Oracle]) and an image, DeepFool
// repeatedly linearizes the classifier, steps onto the closest linearized
// decision boundary among the top-ranked classes, and stops once the
// predicted label changes or MaxIter iterations have run.
//
// Example:
//
//	import (
//	    "github.com/born-ml/deepfool/deepfool"
//	    "github.com/born-ml/deepfool/oracle"
//	)
//
//	func main() {
//	    o, err := oracle.NewONNX("mnist.onnx", oracle.CPU, oracle.Options{Flatten: true})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer o.Close()
//
//	    res, err := deepfool.Attack(img, o, deepfool.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.OriginalLabel, "->", res.FinalLabel, "l2:", res.L2())
//	}
//
// Use [AttackRegion] to confine the perturbation to a rectangle.
package deepfool

import "github.com/born-ml/deepfool/internal/deepfool"

// Oracle is a differentiable classifier queried by the attack.
type Oracle = deepfool.Oracle

// Image is a [C, H, W] image with row-major float64 data.
type Image = deepfool.Image

// Shape is an image shape {C, H, W}.
type Shape = deepfool.Shape

// Region is a rectangle [X1, X2) x [Y1, Y2) over the H and W axes.
type Region = deepfool.Region

// Config controls an attack.
type Config = deepfool.Config

// IterationState is passed to Config.OnIteration after every iteration.
type IterationState = deepfool.IterationState

// Result is the outcome of an attack.
type Result = deepfool.Result

// ConfigError reports an invalid Config field.
type ConfigError = deepfool.ConfigError

// Errors returned by the attack.
var (
	ErrNilOracle         = deepfool.ErrNilOracle
	ErrInvalidImage      = deepfool.ErrInvalidImage
	ErrInvalidConfig     = deepfool.ErrInvalidConfig
	ErrNoClasses         = deepfool.ErrNoClasses
	ErrActivationShape   = deepfool.ErrActivationShape
	ErrGradientShape     = deepfool.ErrGradientShape
	ErrRegionOutOfBounds = deepfool.ErrRegionOutOfBounds
	ErrEmptyRegion       = deepfool.ErrEmptyRegion
	ErrOracle            = deepfool.ErrOracle
)

// DefaultConfig returns NumClasses 10, Overshoot 0.02, MaxIter 50.
func DefaultConfig() Config {
	return deepfool.DefaultConfig()
}

// NewImage creates an image from a copy of data.
func NewImage(shape Shape, data []float64) (*Image, error) {
	return deepfool.NewImage(shape, data)
}

// Zeros returns a zero image of the given shape.
func Zeros(shape Shape) *Image {
	return deepfool.Zeros(shape)
}

// FullRegion returns the rectangle covering every pixel of shape.
func FullRegion(shape Shape) Region {
	return deepfool.FullRegion(shape)
}

// ParseRegion parses "x1,y1,x2,y2".
func ParseRegion(s string) (Region, error) {
	return deepfool.ParseRegion(s)
}

// Attack searches for a minimal perturbation of img that changes the label
// predicted by oracle.
func Attack(img *Image, oracle Oracle, cfg Config) (*Result, error) {
	return deepfool.Attack(img, oracle, cfg)
}

// AttackRegion is Attack restricted to region. A nil region covers the
// whole image.
func AttackRegion(img *Image, oracle Oracle, region *Region, cfg Config) (*Result, error) {
	return deepfool.AttackRegion(img, oracle, region, cfg)
}

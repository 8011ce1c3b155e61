package deepfool

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// engine holds the state shared by the global and region-restricted variants.
type engine struct {
	oracle Oracle
	cfg    Config
	log    *slog.Logger

	// Region variant only; nil mask means the whole image is free.
	region *Region
	mask   []float64

	size       int // element count of the attacked image
	numClasses int // activation count of the first forward pass
}

// direction is the winning linearized step of one iteration.
type direction struct {
	target int       // candidate class, -1 when every candidate was degenerate
	dist   float64   // estimated distance to the target boundary
	w      []float64 // gradient difference towards target (masked in the region variant)
}

func (e *engine) run(img *Image) (*Result, error) {
	e.size = img.Shape.NumElements()
	activations, err := e.forward(img)
	if err != nil {
		return nil, err
	}
	e.numClasses = len(activations)

	candidates := rankClasses(activations, e.cfg.NumClasses)
	original := candidates[0]

	n := e.size
	total := make([]float64, n)
	perturbed := img.Clone()
	scale := e.cfg.scale()

	label := original
	iter := 0
	for label == original && iter < e.cfg.MaxIter {
		d, err := e.step(activations, candidates)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter+1, err)
		}

		if d.target >= 0 {
			e.accumulate(total, d)
		}

		for i := range perturbed.Data {
			perturbed.Data[i] = img.Data[i] + scale*total[i]
		}

		activations, err = e.forward(perturbed)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iter+1, err)
		}
		label = argmax(activations)
		iter++

		if e.cfg.OnIteration != nil {
			e.cfg.OnIteration(IterationState{
				Iteration:    iter,
				Label:        label,
				Target:       d.target,
				Step:         d.dist,
				Perturbation: total,
			})
		}
		if e.cfg.Verbose && iter%e.cfg.logEvery() == 0 {
			e.log.Info("deepfool progress", "iteration", iter, "label", label, "original", original)
		}
	}

	perturbation := &Image{Shape: img.Shape, Data: make([]float64, n)}
	for i, v := range total {
		perturbation.Data[i] = scale * v
	}

	if e.cfg.Verbose {
		attrs := []any{"original", original, "final", label, "iterations", iter, "l2", perturbation.Norm()}
		if e.region != nil {
			attrs = append(attrs, "region", e.region.String())
		}
		e.log.Info("deepfool finished", attrs...)
	}

	return &Result{
		Perturbation:  perturbation,
		Iterations:    iter,
		OriginalLabel: original,
		FinalLabel:    label,
		Perturbed:     perturbed,
		Candidates:    candidates,
	}, nil
}

// step linearizes every candidate boundary around the current image and returns the
// closest one. Ties keep the first candidate in descending-activation order.
func (e *engine) step(activations []float64, candidates []int) (direction, error) {
	original := candidates[0]
	best := direction{target: -1, dist: math.Inf(1)}

	gradOrigin, err := e.gradient(original)
	if err != nil {
		return best, err
	}

	for _, k := range candidates[1:] {
		grad, err := e.gradient(k)
		if err != nil {
			return best, err
		}

		w := make([]float64, len(grad))
		for i := range grad {
			if e.mask != nil && e.mask[i] == 0 {
				continue
			}
			w[i] = grad[i] - gradOrigin[i]
		}

		wNorm := norm(w)
		if wNorm == 0 {
			// Degenerate boundary: infinitely far in the linear model.
			continue
		}

		dist := math.Abs(activations[k]-activations[original]) / wNorm
		if dist < best.dist {
			best = direction{target: k, dist: dist, w: w}
		}
	}
	return best, nil
}

// accumulate adds dist·w/||w|| to total, skipping masked-out pixels.
func (e *engine) accumulate(total []float64, d direction) {
	coef := d.dist / norm(d.w)
	for i, w := range d.w {
		if e.mask != nil && e.mask[i] == 0 {
			continue
		}
		total[i] += coef * w
	}
}

func (e *engine) forward(img *Image) ([]float64, error) {
	activations, err := e.oracle.Forward(img)
	if err != nil {
		return nil, wrapOracle("forward", err)
	}
	if len(activations) == 0 {
		return nil, ErrNoClasses
	}
	if e.numClasses != 0 && len(activations) != e.numClasses {
		return nil, fmt.Errorf("%w: %d then %d", ErrActivationShape, e.numClasses, len(activations))
	}
	for k, v := range activations {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: forward: activation %d is %v", ErrOracle, k, v)
		}
	}
	return activations, nil
}

func (e *engine) gradient(class int) ([]float64, error) {
	grad, err := e.oracle.Gradient(class)
	if err != nil {
		return nil, wrapOracle(fmt.Sprintf("gradient of class %d", class), err)
	}
	// Adapters strip the batch dimension, so the flat layout must match the image.
	if len(grad) != e.size {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrGradientShape, len(grad), e.size)
	}
	return grad, nil
}

func wrapOracle(op string, err error) error {
	if errors.Is(err, ErrOracle) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrOracle, op, err)
}

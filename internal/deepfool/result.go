package deepfool

import "math"

// Result is the outcome of a DeepFool run.
type Result struct {
	// Perturbation is the accumulated perturbation r_tot, scaled by (1+Overshoot)
	// only when Config.ApplyOvershoot is set.
	Perturbation *Image

	// Iterations is the number of linearization steps taken (<= MaxIter).
	Iterations int

	// OriginalLabel is the label predicted for the unperturbed image.
	OriginalLabel int

	// FinalLabel is the label predicted for Perturbed.
	FinalLabel int

	// Perturbed is the original image plus Perturbation.
	Perturbed *Image

	// Candidates is the fixed candidate class set, highest initial activation first.
	Candidates []int
}

// Fooled reports whether the label changed. A false value after MaxIter
// iterations is the non-convergence signal.
func (r *Result) Fooled() bool {
	return r.FinalLabel != r.OriginalLabel
}

// L2 returns the Euclidean norm of the perturbation.
func (r *Result) L2() float64 {
	return r.Perturbation.Norm()
}

// Robustness returns ||r||₂ / ||x||₂ for the attacked image x, the per-sample
// term of the DeepFool robustness estimate.
func (r *Result) Robustness(original *Image) float64 {
	xNorm := original.Norm()
	rNorm := r.L2()
	if xNorm == 0 {
		if rNorm == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return rNorm / xNorm
}

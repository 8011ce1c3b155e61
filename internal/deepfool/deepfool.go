// Package deepfool implements the DeepFool minimal adversarial perturbation search.
//
// DeepFool linearizes the classifier around the current point, estimates the distance
// to every candidate decision boundary as |f_k - f_orig| / ||∇f_k - ∇f_orig||, and steps
// onto the closest one. Steps accumulate until the predicted label changes or the
// iteration cap is hit.
//
// Two entry points share one loop:
//   - Attack perturbs the whole image.
//   - AttackRegion confines the perturbation to a rectangle; pixels outside it are
//     never touched.
//
// Non-convergence is not an error: check Result.Fooled.
package deepfool

import "fmt"

// Oracle is a differentiable classifier.
//
// Implementations are not required to be safe for concurrent use.
type Oracle interface {
	// Forward evaluates the classifier on img and returns one pre-softmax
	// activation per class. The engine reuses img between calls, so
	// implementations must copy whatever they keep.
	Forward(img *Image) ([]float64, error)

	// Gradient returns the gradient of activation[class] with respect to the image
	// passed to the most recent Forward call, laid out like Image.Data.
	// Each call returns a fresh buffer.
	Gradient(class int) ([]float64, error)
}

// Attack searches for a minimal perturbation of img that changes the oracle's label.
//
// The input image is not modified.
func Attack(img *Image, oracle Oracle, cfg Config) (*Result, error) {
	e, err := newEngine(img, oracle, cfg)
	if err != nil {
		return nil, err
	}
	return e.run(img)
}

// AttackRegion is Attack restricted to a rectangle. A nil region covers the whole image.
//
// Out-of-bounds rectangles are rejected with ErrRegionOutOfBounds. An empty rectangle
// is accepted but can never move the image, so the run ends unfooled after MaxIter
// iterations with a zero perturbation.
func AttackRegion(img *Image, oracle Oracle, region *Region, cfg Config) (*Result, error) {
	e, err := newEngine(img, oracle, cfg)
	if err != nil {
		return nil, err
	}

	r := FullRegion(img.Shape)
	if region != nil {
		r = *region
	}
	if err := r.checkBounds(img.Shape); err != nil {
		return nil, err
	}
	if r.Empty() {
		e.log.Warn("deepfool: empty region, perturbation is impossible", "region", r.String())
	}

	e.region = &r
	e.mask = r.Mask(img.Shape)
	return e.run(img)
}

func newEngine(img *Image, oracle Oracle, cfg Config) (*engine, error) {
	if oracle == nil {
		return nil, ErrNilOracle
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("attack: %w", err)
	}
	return &engine{oracle: oracle, cfg: cfg, log: cfg.logger()}, nil
}

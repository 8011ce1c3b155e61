// Package eval measures classifier robustness by running DeepFool over a
// batch of images.
//
// The report carries the fooling rate and the robustness estimate
// ρ_adv = mean(‖r‖₂ / ‖x‖₂) over fooled samples.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/parallel"
)

// OracleFactory creates an oracle for one worker. Oracles are never shared
// between goroutines. Oracles that implement io.Closer are closed when the
// worker finishes.
type OracleFactory func() (deepfool.Oracle, error)

// Config controls a batch evaluation.
type Config struct {
	Attack   deepfool.Config
	Region   *deepfool.Region // nil attacks the whole image
	Parallel parallel.Config

	// ContinueOnError records failed attacks in the report instead of
	// aborting the run.
	ContinueOnError bool

	// KeepPerturbations stores each sample's perturbation in the report.
	KeepPerturbations bool

	Metrics *Metrics     // optional
	Logger  *slog.Logger // defaults to slog.Default()
}

// DefaultConfig returns the default attack settings spread over all CPUs.
func DefaultConfig() Config {
	return Config{
		Attack:   deepfool.DefaultConfig(),
		Parallel: parallel.DefaultConfig(),
	}
}

// Sample is the outcome of attacking one image.
type Sample struct {
	Index         int             `json:"index"`
	OriginalLabel int             `json:"original_label"`
	FinalLabel    int             `json:"final_label"`
	Iterations    int             `json:"iterations"`
	Fooled        bool            `json:"fooled"`
	L2            float64         `json:"l2"`
	Robustness    float64         `json:"robustness"`
	Duration      time.Duration   `json:"duration_ns"`
	Err           string          `json:"error,omitempty"`
	Perturbation  *deepfool.Image `json:"-"`
}

// Report summarizes a batch evaluation.
type Report struct {
	RunID          uuid.UUID     `json:"run_id"`
	Started        time.Time     `json:"started"`
	Duration       time.Duration `json:"duration_ns"`
	Samples        []Sample      `json:"samples"`
	Fooled         int           `json:"fooled"`
	Failed         int           `json:"failed"`
	FoolingRate    float64       `json:"fooling_rate"`
	MeanRobustness float64       `json:"mean_robustness"`
	MeanIterations float64       `json:"mean_iterations"`
}

// Run attacks every image and summarizes the outcomes.
//
// Images are split into contiguous chunks, one worker and one oracle per
// chunk. Cancelling ctx stops workers between samples.
func Run(ctx context.Context, images []*deepfool.Image, newOracle OracleFactory, cfg Config) (*Report, error) {
	if newOracle == nil {
		return nil, errors.New("eval: nil oracle factory")
	}
	if len(images) == 0 {
		return nil, errors.New("eval: no images")
	}
	if err := cfg.Attack.Validate(); err != nil {
		return nil, fmt.Errorf("eval: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Attack.Logger == nil {
		cfg.Attack.Logger = log
	}

	report := &Report{
		RunID:   uuid.New(),
		Started: time.Now(),
		Samples: make([]Sample, len(images)),
	}
	log.Info("evaluation started",
		"run_id", report.RunID,
		"images", len(images),
		"workers", len(parallel.Chunks(len(images), cfg.Parallel)),
	)

	err := parallel.ForChunks(ctx, len(images), cfg.Parallel, func(ctx context.Context, c parallel.Chunk) error {
		oracle, err := newOracle()
		if err != nil {
			return fmt.Errorf("eval: create oracle: %w", err)
		}
		if closer, ok := oracle.(io.Closer); ok {
			defer closer.Close()
		}

		for i := c.Start; i < c.End; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := attackOne(i, images[i], oracle, cfg)
			cfg.Metrics.observe(s)
			report.Samples[i] = s
			if err != nil {
				if !cfg.ContinueOnError {
					return fmt.Errorf("eval: image %d: %w", i, err)
				}
				log.Warn("attack failed", "run_id", report.RunID, "index", i, "err", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(report.Started)
	report.summarize()
	log.Info("evaluation finished",
		"run_id", report.RunID,
		"fooling_rate", report.FoolingRate,
		"mean_robustness", report.MeanRobustness,
		"mean_iterations", report.MeanIterations,
		"failed", report.Failed,
		"duration", report.Duration,
	)
	return report, nil
}

func attackOne(i int, img *deepfool.Image, oracle deepfool.Oracle, cfg Config) (Sample, error) {
	start := time.Now()
	res, err := deepfool.AttackRegion(img, oracle, cfg.Region, cfg.Attack)
	s := Sample{Index: i, Duration: time.Since(start)}
	if err != nil {
		s.Err = err.Error()
		return s, err
	}

	s.OriginalLabel = res.OriginalLabel
	s.FinalLabel = res.FinalLabel
	s.Iterations = res.Iterations
	s.Fooled = res.Fooled()
	s.L2 = res.L2()
	s.Robustness = res.Robustness(img)
	if cfg.KeepPerturbations {
		s.Perturbation = res.Perturbation
	}
	return s, nil
}

func (r *Report) summarize() {
	var done, iters, robustN int
	var robust float64
	for _, s := range r.Samples {
		if s.Err != "" {
			r.Failed++
			continue
		}
		done++
		iters += s.Iterations
		if !s.Fooled {
			continue
		}
		r.Fooled++
		if !math.IsInf(s.Robustness, 0) {
			robust += s.Robustness
			robustN++
		}
	}
	if done > 0 {
		r.FoolingRate = float64(r.Fooled) / float64(done)
		r.MeanIterations = float64(iters) / float64(done)
	}
	if robustN > 0 {
		r.MeanRobustness = robust / float64(robustN)
	}
}

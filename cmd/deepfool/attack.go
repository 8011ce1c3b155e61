package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/deepfool/internal/config"
	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/oracle"
)

type attackResult struct {
	Index         int       `json:"index"`
	Region        string    `json:"region,omitempty"`
	OriginalLabel int       `json:"original_label"`
	FinalLabel    int       `json:"final_label"`
	Iterations    int       `json:"iterations"`
	Fooled        bool      `json:"fooled"`
	L2            float64   `json:"l2"`
	Robustness    float64   `json:"robustness"`
	Candidates    []int     `json:"candidates"`
	Shape         []int     `json:"shape"`
	Perturbation  []float64 `json:"perturbation"`
}

func runAttack(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("attack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "attack.yaml", "YAML run configuration")
	index := fs.Int("index", 0, "image index within the input tensor")
	region := fs.String("region", "", "override attack.region (x1,y1,x2,y2)")
	maxIter := fs.Int("max-iter", 0, "override attack.max_iter")
	out := fs.String("out", "", "override output.result")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *region != "" {
		f.Attack.Region = *region
	}
	if *maxIter > 0 {
		f.Attack.MaxIter = *maxIter
	}
	if *out != "" {
		f.Output.Result = *out
	}
	if err := f.Validate(); err != nil {
		return err
	}

	log, err := f.Logger(stderr)
	if err != nil {
		return err
	}

	images, err := oracle.LoadImages(f.Input.Path, f.Input.Tensor, f.Shape())
	if err != nil {
		return err
	}
	if *index < 0 || *index >= len(images) {
		return fmt.Errorf("index %d out of range, input holds %d images", *index, len(images))
	}
	img := images[*index]

	r, err := f.Region()
	if err != nil {
		return err
	}

	o, err := oracleFactory(f)()
	if err != nil {
		return err
	}
	if closer, ok := o.(io.Closer); ok {
		defer closer.Close()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("attack started", "model", f.Model.Path, "kind", f.Model.Kind, "index", *index, "shape", img.Shape.String())
	res, err := deepfool.AttackRegion(img, o, r, f.AttackConfig(log))
	if err != nil {
		return err
	}
	log.Info("attack finished",
		"original", res.OriginalLabel,
		"final", res.FinalLabel,
		"iterations", res.Iterations,
		"fooled", res.Fooled(),
		"l2", res.L2(),
	)

	if f.Output.Perturbations != "" {
		err := oracle.WriteImages(f.Output.Perturbations, "perturbations", []*deepfool.Image{res.Perturbation, res.Perturbed})
		if err != nil {
			return fmt.Errorf("write perturbations: %w", err)
		}
	}

	result := attackResult{
		Index:         *index,
		OriginalLabel: res.OriginalLabel,
		FinalLabel:    res.FinalLabel,
		Iterations:    res.Iterations,
		Fooled:        res.Fooled(),
		L2:            res.L2(),
		Robustness:    res.Robustness(img),
		Candidates:    res.Candidates,
		Shape:         img.Shape[:],
		Perturbation:  res.Perturbation.Data,
	}
	if r != nil {
		result.Region = r.String()
	}
	return writeJSON(f.Output.Result, stdout, result)
}

// writeJSON writes v to path, or to stdout when path is empty.
func writeJSON(path string, stdout io.Writer, v any) (err error) {
	w := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, f.Close()) }()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

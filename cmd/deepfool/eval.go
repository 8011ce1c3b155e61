package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/born-ml/deepfool/internal/config"
	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/eval"
	"github.com/born-ml/deepfool/internal/oracle"
)

func runEval(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "eval.yaml", "YAML run configuration")
	workers := fs.Int("workers", 0, "override eval.workers")
	metrics := fs.String("metrics", "", "override output.metrics (Prometheus text format)")
	out := fs.String("out", "", "override output.result")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		f.Eval.Workers = *workers
	}
	if *metrics != "" {
		f.Output.Metrics = *metrics
	}
	if *out != "" {
		f.Output.Result = *out
	}

	log, err := f.Logger(stderr)
	if err != nil {
		return err
	}
	images, err := oracle.LoadImages(f.Input.Path, f.Input.Tensor, f.Shape())
	if err != nil {
		return err
	}
	r, err := f.Region()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	cfg := eval.Config{
		Attack:            f.AttackConfig(log),
		Region:            r,
		Parallel:          f.ParallelConfig(),
		ContinueOnError:   f.Eval.ContinueOnError,
		KeepPerturbations: f.Output.Perturbations != "",
		Metrics:           eval.NewMetrics(reg),
		Logger:            log,
	}

	report, err := eval.Run(ctx, images, oracleFactory(f), cfg)
	if err != nil {
		return err
	}

	if f.Output.Perturbations != "" {
		if err := writePerturbations(f.Output.Perturbations, report); err != nil {
			return err
		}
	}
	if f.Output.Metrics != "" {
		if err := writeMetrics(f.Output.Metrics, reg); err != nil {
			return err
		}
	}
	return writeJSON(f.Output.Result, stdout, report)
}

func writePerturbations(path string, report *eval.Report) error {
	var images []*deepfool.Image
	for _, s := range report.Samples {
		if s.Perturbation != nil {
			images = append(images, s.Perturbation)
		}
	}
	if len(images) == 0 {
		return nil
	}
	return oracle.WriteImages(path, "perturbations", images)
}

func writeMetrics(path string, g prometheus.Gatherer) (err error) {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return err
		}
	}
	return nil
}

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package eval measures classifier robustness over a batch of images.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	cfg := eval.DefaultConfig()
//	cfg.Metrics = eval.NewMetrics(reg)
//
//	report, err := eval.Run(ctx, images, func() (deepfool.Oracle, error) {
//	    return oracle.NewONNX("mnist.onnx", oracle.CPU, oracle.Options{})
//	}, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("fooling rate %.2f, rho_adv %.4f\n", report.FoolingRate, report.MeanRobustness)
package eval

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/eval"
)

// Config controls a batch evaluation.
type Config = eval.Config

// OracleFactory creates one oracle per worker.
type OracleFactory = eval.OracleFactory

// Report summarizes a batch evaluation.
type Report = eval.Report

// Sample is the outcome for one image.
type Sample = eval.Sample

// Metrics holds the Prometheus collectors for evaluations.
type Metrics = eval.Metrics

// DefaultConfig returns default attack settings over all CPUs.
func DefaultConfig() Config {
	return eval.DefaultConfig()
}

// NewMetrics creates evaluation collectors registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return eval.NewMetrics(reg)
}

// Run attacks every image and summarizes the outcomes.
func Run(ctx context.Context, images []*deepfool.Image, newOracle OracleFactory, cfg Config) (*Report, error) {
	return eval.Run(ctx, images, newOracle, cfg)
}

package main

import (
	"fmt"

	"github.com/born-ml/deepfool/internal/config"
	"github.com/born-ml/deepfool/internal/deepfool"
	"github.com/born-ml/deepfool/internal/eval"
	"github.com/born-ml/deepfool/internal/oracle"
)

// oracleFactory builds a fresh oracle per call from the model section.
func oracleFactory(f *config.File) eval.OracleFactory {
	m := f.Model
	device := f.Device()
	return func() (deepfool.Oracle, error) {
		switch m.Kind {
		case config.KindONNX:
			return oracle.NewONNX(m.Path, device, oracle.Options{Flatten: m.Flatten})
		case config.KindLoom:
			return oracle.LoadLoom(m.Path, m.ID)
		case config.KindAffine:
			return oracle.NewAffine(m.Weights, m.Bias)
		}
		return nil, fmt.Errorf("unknown model kind %q", m.Kind)
	}
}

// Package generator produces synthetic samples for exercising the test
// engine.
package generator

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"kstest/domain/run"
	"kstest/internal/errors"
	"kstest/ports"
)

// NormalGenerator draws normal deviates by inverse transform sampling.
type NormalGenerator struct {
	rng ports.RNGPort
}

// NewNormalGenerator creates a generator. A nil rng uses RNGAdapter.
func NewNormalGenerator(rng ports.RNGPort) *NormalGenerator {
	if rng == nil {
		rng = NewRNGAdapter()
	}
	return &NormalGenerator{rng: rng}
}

// Generate returns spec.Count deviates from N(spec.Mean, spec.Variance).
// The stream name separates samples drawn with the same seed.
func (g *NormalGenerator) Generate(ctx context.Context, stream string, spec run.NormalSpec) ([]float64, error) {
	if err := spec.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	r, err := g.rng.SeededStream(ctx, stream, spec.Seed)
	if err != nil {
		return nil, err
	}

	dist := distuv.Normal{Mu: spec.Mean, Sigma: math.Sqrt(spec.Variance)}
	out := make([]float64, spec.Count)
	for i := range out {
		u := r.Float64()
		for u == 0 {
			u = r.Float64()
		}
		out[i] = dist.Quantile(u)
	}
	return out, nil
}

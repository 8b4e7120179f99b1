package significance

import (
	"math"

	"kstest/domain/core"
)

// SeriesConfig bounds the evaluation of the Kolmogorov series.
type SeriesConfig struct {
	// MaxTerms caps the number of summed terms.
	MaxTerms int `json:"max_terms" yaml:"max_terms"`
	// Tolerance stops the summation once the next term is smaller.
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
}

// DefaultSeriesConfig returns 100 terms and a tolerance of 1e-10.
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{MaxTerms: 100, Tolerance: 1e-10}
}

func (c SeriesConfig) withDefaults() SeriesConfig {
	d := DefaultSeriesConfig()
	if c.MaxTerms <= 0 {
		c.MaxTerms = d.MaxTerms
	}
	if !(c.Tolerance > 0) {
		c.Tolerance = d.Tolerance
	}
	return c
}

// Lambda scales the statistic by the effective sample size
// N = n·m/(n+m) with Stephens' correction: (sqrt(N) + 0.12 + 0.11/sqrt(N))·d.
func Lambda(d float64, n, m int) float64 {
	en := math.Sqrt(float64(n) * float64(m) / float64(n+m))
	return (en + 0.12 + 0.11/en) * d
}

// seriesTerm is the signed j-th term 2·(−1)^(j−1)·exp(−2j²λ²).
func seriesTerm(j int, lambda float64) float64 {
	t := 2 * math.Exp(-2*float64(j)*float64(j)*lambda*lambda)
	if j%2 == 0 {
		return -t
	}
	return t
}

// KolmogorovQ evaluates Q(λ) = 2·Σ (−1)^(j−1)·exp(−2j²λ²), the asymptotic
// probability of a scaled statistic at least λ. The sum stops when the next
// term falls below cfg.Tolerance. If cfg.MaxTerms is reached first, the
// clamped partial sum is returned together with a ConvergenceWarning.
func KolmogorovQ(lambda float64, cfg SeriesConfig) (float64, *core.ConvergenceWarning) {
	cfg = cfg.withDefaults()
	if lambda <= 0 || math.IsNaN(lambda) {
		return 1, nil
	}

	sum := 0.0
	for j := 1; j <= cfg.MaxTerms; j++ {
		sum += seriesTerm(j, lambda)
		if math.Abs(seriesTerm(j+1, lambda)) < cfg.Tolerance {
			return clampProbability(sum), nil
		}
	}

	q := clampProbability(sum)
	return q, &core.ConvergenceWarning{
		Lambda:     lambda,
		Terms:      cfg.MaxTerms,
		PartialSum: q,
		TailBound:  math.Abs(seriesTerm(cfg.MaxTerms+1, lambda)),
	}
}

func clampProbability(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

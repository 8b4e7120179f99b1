package significance

import (
	"math"

	"kstest/domain/core"
)

// publishedCoefficients are the tabulated c(α) values of the two-sample
// test, keyed by confidence level.
var publishedCoefficients = map[float64]float64{
	0.80:  1.07,
	0.85:  1.14,
	0.90:  1.22,
	0.95:  1.36,
	0.975: 1.48,
	0.99:  1.63,
	0.995: 1.73,
	0.999: 1.95,
}

// inversionSeries is tighter than the default so that bisection sees a
// smooth function.
var inversionSeries = SeriesConfig{MaxTerms: 2000, Tolerance: 1e-17}

const (
	inversionLow  = 0.1
	inversionHigh = 10.0
	inversionEps  = 1e-12
)

// Coefficient returns c(confidence). Tabulated levels return the published
// value; any other level in (0, 1) is found by solving Q(c) = 1 − confidence.
func Coefficient(confidence float64) (float64, error) {
	if err := validateConfidence(confidence); err != nil {
		return 0, err
	}
	if c, ok := publishedCoefficients[confidence]; ok {
		return c, nil
	}
	return invertKolmogorov(1 - confidence), nil
}

// invertKolmogorov bisects for the λ with Q(λ) = alpha. Q is strictly
// decreasing on the search interval.
func invertKolmogorov(alpha float64) float64 {
	lo, hi := inversionLow, inversionHigh
	for i := 0; i < 200 && hi-lo > inversionEps; i++ {
		mid := 0.5 * (lo + hi)
		q, _ := KolmogorovQ(mid, inversionSeries)
		if q > alpha {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

func validateConfidence(confidence float64) error {
	if math.IsNaN(confidence) || confidence <= 0 || confidence >= 1 {
		return core.NewInvalidConfidenceError(confidence)
	}
	return nil
}

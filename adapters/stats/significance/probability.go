package significance

import (
	"kstest/domain/stats"
	"kstest/internal"
	"kstest/ports"
)

// ProbabilityStrategy decides by the asymptotic Kolmogorov distribution:
// the null hypothesis is rejected when Q(λ) ≤ 1 − confidence. When the
// series does not converge the decision falls back to the critical value and
// the warning is carried on the result.
type ProbabilityStrategy struct {
	series   SeriesConfig
	critical *CriticalValueStrategy
	logger   *internal.Logger
}

// NewProbabilityStrategy creates the strategy. Zero fields of series take
// their defaults; a nil logger uses internal.DefaultLogger.
func NewProbabilityStrategy(series SeriesConfig, logger *internal.Logger) *ProbabilityStrategy {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ProbabilityStrategy{
		series:   series.withDefaults(),
		critical: NewCriticalValueStrategy(logger),
		logger:   logger,
	}
}

// Name returns the strategy name
func (s *ProbabilityStrategy) Name() stats.Strategy {
	return stats.StrategyRejectionProbability
}

// Series returns the effective series configuration.
func (s *ProbabilityStrategy) Series() SeriesConfig {
	return s.series
}

// Estimate computes Q(λ) for the statistic and decides. The critical value is
// always filled in alongside the probability.
func (s *ProbabilityStrategy) Estimate(statistic float64, n, m int, confidence float64) (stats.Significance, error) {
	sig, err := s.critical.Estimate(statistic, n, m, confidence)
	if err != nil {
		return stats.Significance{}, err
	}

	lambda := Lambda(statistic, n, m)
	q, warning := KolmogorovQ(lambda, s.series)
	sig.PValue = &q

	if warning != nil {
		s.logger.Warn("kolmogorov series did not converge, deciding by critical value",
			"lambda", lambda, "terms", warning.Terms, "tail", warning.TailBound)
		sig.Warning = warning
		return sig, nil
	}

	sig.IsRejected = q <= 1-confidence
	return sig, nil
}

var _ ports.SignificancePort = (*ProbabilityStrategy)(nil)

// Package significance turns a two-sample statistic into a decision, either
// by comparing it with a critical value or by evaluating the asymptotic
// Kolmogorov distribution.
package significance

import (
	"fmt"
	"math"

	"kstest/domain/core"
	"kstest/domain/stats"
	"kstest/internal"
	"kstest/ports"
)

// MinTabulatedSize is the smallest sample size for which the critical value
// approximation is considered accurate.
const MinTabulatedSize = 13

// CriticalValue returns c(confidence)·sqrt((n+m)/(n·m)).
func CriticalValue(n, m int, confidence float64) (float64, error) {
	if err := validateSizes(n, m); err != nil {
		return 0, err
	}
	c, err := Coefficient(confidence)
	if err != nil {
		return 0, err
	}
	nf, mf := float64(n), float64(m)
	return c * math.Sqrt((nf+mf)/(nf*mf)), nil
}

// CriticalValueStrategy rejects the null hypothesis when the statistic
// exceeds the critical value.
type CriticalValueStrategy struct {
	logger *internal.Logger
}

// NewCriticalValueStrategy creates the strategy. A nil logger uses
// internal.DefaultLogger.
func NewCriticalValueStrategy(logger *internal.Logger) *CriticalValueStrategy {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CriticalValueStrategy{logger: logger}
}

// Name returns the strategy name
func (s *CriticalValueStrategy) Name() stats.Strategy {
	return stats.StrategyCriticalValue
}

// Estimate computes the critical value and the decision.
func (s *CriticalValueStrategy) Estimate(statistic float64, n, m int, confidence float64) (stats.Significance, error) {
	if err := validateStatistic(statistic); err != nil {
		return stats.Significance{}, err
	}
	cv, err := CriticalValue(n, m, confidence)
	if err != nil {
		return stats.Significance{}, err
	}
	if n < MinTabulatedSize || m < MinTabulatedSize {
		s.logger.Warn("critical value approximation is inaccurate for small samples",
			"n", n, "m", m, "min_size", MinTabulatedSize)
	}
	return stats.Significance{
		CriticalValue: cv,
		IsRejected:    statistic > cv,
	}, nil
}

func validateSizes(n, m int) error {
	if n < 1 || m < 1 {
		return fmt.Errorf("%w: got n=%d, m=%d", core.ErrInvalidSampleSize, n, m)
	}
	return nil
}

func validateStatistic(d float64) error {
	if math.IsNaN(d) || d < 0 || d > 1 {
		return fmt.Errorf("statistic %v outside [0, 1]", d)
	}
	return nil
}

var _ ports.SignificancePort = (*CriticalValueStrategy)(nil)

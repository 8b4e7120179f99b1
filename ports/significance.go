package ports

import "kstest/domain/stats"

// SignificancePort converts a statistic and the two sample sizes into a
// decision at the given confidence level.
type SignificancePort interface {
	Name() stats.Strategy
	Estimate(statistic float64, n, m int, confidence float64) (stats.Significance, error)
}

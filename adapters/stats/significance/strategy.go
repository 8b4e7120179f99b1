package significance

import (
	"fmt"

	"kstest/domain/stats"
	"kstest/internal"
	"kstest/ports"
)

// Estimators returns the estimators a strategy runs. The first one decides;
// for StrategyBoth the second is run for comparison.
func Estimators(strategy stats.Strategy, series SeriesConfig, logger *internal.Logger) ([]ports.SignificancePort, error) {
	switch strategy {
	case stats.StrategyCriticalValue:
		return []ports.SignificancePort{NewCriticalValueStrategy(logger)}, nil
	case stats.StrategyRejectionProbability:
		return []ports.SignificancePort{NewProbabilityStrategy(series, logger)}, nil
	case stats.StrategyBoth, "":
		return []ports.SignificancePort{
			NewCriticalValueStrategy(logger),
			NewProbabilityStrategy(series, logger),
		}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}

package profiling

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// SampleSummary describes the shape of one sample next to a test result.
type SampleSummary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// Summarize computes summary statistics of data. The slice is not modified.
func Summarize(data []float64) (SampleSummary, error) {
	summary := SampleSummary{Count: len(data)}
	if len(data) == 0 {
		return summary, stats.EmptyInputErr
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return summary, err
	}
	if len(data) > 1 {
		if summary.StdDev, err = stats.StandardDeviationSample(data); err != nil {
			return summary, err
		}
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, err
	}

	// Nearest-rank quartiles, defined for any sample size
	if summary.Q25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return summary, err
	}
	if summary.Q75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return summary, err
	}

	summary.Skewness = calculateSkewness(data, summary.Mean, summary.StdDev)
	return summary, nil
}

// SummarizeInts converts integer samples and summarizes them.
func SummarizeInts(data []int64) (SampleSummary, error) {
	floats := make([]float64, len(data))
	for i, v := range data {
		floats[i] = float64(v)
	}
	return Summarize(floats)
}

// String renders the summary on one line.
func (s SampleSummary) String() string {
	return fmt.Sprintf("n=%d mean=%.4g sd=%.4g min=%.4g q25=%.4g median=%.4g q75=%.4g max=%.4g skew=%.3f",
		s.Count, s.Mean, s.StdDev, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.Skewness)
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return skewness * correction
}

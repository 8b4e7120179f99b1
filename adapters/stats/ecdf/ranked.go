package ecdf

import (
	"kstest/domain/stats"
	"kstest/ports"
)

// rankedElement is a distinct value of a sorted sample together with its
// cumulative rank: the number of sample elements <= value.
type rankedElement[T any] struct {
	value T
	rank  int
}

// rankRuns collapses each run of equal values in sorted into one ranked
// element carrying the rank of the last element of the run.
func rankRuns[T any](sorted []T, ord ports.OrderPort[T]) ([]rankedElement[T], error) {
	runs := make([]rankedElement[T], 0, len(sorted))
	for i, v := range sorted {
		if last := len(runs) - 1; last >= 0 {
			o, err := ord.Compare(runs[last].value, v)
			if err != nil {
				return nil, err
			}
			if o == stats.Equal {
				runs[last].rank = i + 1
				continue
			}
		}
		runs = append(runs, rankedElement[T]{value: v, rank: i + 1})
	}
	return runs, nil
}

// stepGap is |i/n − j/m| scaled by n·m.
func stepGap(i, n, j, m int) uint64 {
	a := uint64(i) * uint64(m)
	b := uint64(j) * uint64(n)
	if a > b {
		return a - b
	}
	return b - a
}

func gapToStatistic(gap uint64, n, m int) float64 {
	return float64(gap) / (float64(n) * float64(m))
}

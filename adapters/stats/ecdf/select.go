package ecdf

import (
	"slices"

	"kstest/domain/core"
	"kstest/domain/stats"
	"kstest/ports"
)

// Value computes one ECDF value of samples at t in O(n) without sorting.
// Prefer New when many values of the same sample are needed.
func Value[T any](samples []T, t T, ord ports.OrderPort[T]) (float64, error) {
	if len(samples) == 0 {
		return 0, core.NewEmptySampleError("")
	}
	count := 0
	for _, v := range samples {
		o, err := ord.Compare(v, t)
		if err != nil {
			return 0, err
		}
		if o != stats.Greater {
			count++
		}
	}
	return float64(count) / float64(len(samples)), nil
}

// Percentile selects the nearest-rank p-th percentile, p in [1, 100], in
// expected O(n).
func Percentile[T any](samples []T, p int, ord ports.OrderPort[T]) (T, error) {
	var zero T
	if p < 1 || p > 100 {
		return zero, core.NewRankError(p, 100)
	}
	return Rank(samples, nearestRank(p, 100, len(samples)), ord)
}

// Permille selects the nearest-rank p-th permille, p in [1, 1000], in
// expected O(n).
func Permille[T any](samples []T, p int, ord ports.OrderPort[T]) (T, error) {
	var zero T
	if p < 1 || p > 1000 {
		return zero, core.NewRankError(p, 1000)
	}
	return Rank(samples, nearestRank(p, 1000, len(samples)), ord)
}

// Rank selects the element of the given rank, rank in [1, len(samples)],
// with quickselect over a copy of samples.
func Rank[T any](samples []T, rank int, ord ports.OrderPort[T]) (T, error) {
	var zero T
	n := len(samples)
	if n == 0 {
		return zero, core.NewEmptySampleError("")
	}
	if rank < 1 || rank > n {
		return zero, core.NewRankError(rank, n)
	}

	work := slices.Clone(samples)
	k := rank - 1
	lo, hi := 0, n
	for {
		pivot := work[lo+(hi-lo)/2]

		// Three-way partition of work[lo:hi]:
		// [lo, lt) < pivot, [lt, gt) == pivot, [gt, hi) > pivot.
		lt, i, gt := lo, lo, hi
		for i < gt {
			o, err := ord.Compare(work[i], pivot)
			if err != nil {
				return zero, err
			}
			switch o {
			case stats.Less:
				work[lt], work[i] = work[i], work[lt]
				lt++
				i++
			case stats.Greater:
				gt--
				work[i], work[gt] = work[gt], work[i]
			default:
				i++
			}
		}

		switch {
		case k < lt:
			hi = lt
		case k >= gt:
			lo = gt
		default:
			return pivot, nil
		}
	}
}

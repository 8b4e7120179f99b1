package ecdf

import (
	"kstest/domain/core"
	"kstest/ports"
)

// Ecdf is the empirical cumulative distribution function of one sample. It
// keeps a sorted copy of the sample, so construction costs O(n log n) and
// every query after that is O(log n) or O(1).
type Ecdf[T any] struct {
	samples []T
	ord     ports.OrderPort[T]
}

// New builds the ECDF of samples. The caller's slice is copied, not retained.
func New[T any](samples []T, ord ports.OrderPort[T]) (*Ecdf[T], error) {
	if len(samples) == 0 {
		return nil, core.NewEmptySampleError("")
	}
	sorted, err := SortedCopy(samples, ord)
	if err != nil {
		return nil, err
	}
	return &Ecdf[T]{samples: sorted, ord: ord}, nil
}

// Len returns the sample size.
func (e *Ecdf[T]) Len() int {
	return len(e.samples)
}

// Value returns the fraction of the sample that is <= t.
func (e *Ecdf[T]) Value(t T) (float64, error) {
	count, err := upperBound(e.samples, t, e.ord)
	if err != nil {
		return 0, err
	}
	return float64(count) / float64(len(e.samples)), nil
}

// Percentile returns the nearest-rank p-th percentile, p in [1, 100].
func (e *Ecdf[T]) Percentile(p int) (T, error) {
	var zero T
	if p < 1 || p > 100 {
		return zero, core.NewRankError(p, 100)
	}
	return e.Rank(nearestRank(p, 100, len(e.samples)))
}

// Permille returns the nearest-rank p-th permille, p in [1, 1000].
func (e *Ecdf[T]) Permille(p int) (T, error) {
	var zero T
	if p < 1 || p > 1000 {
		return zero, core.NewRankError(p, 1000)
	}
	return e.Rank(nearestRank(p, 1000, len(e.samples)))
}

// Rank returns the element of the given rank, rank in [1, Len()].
func (e *Ecdf[T]) Rank(rank int) (T, error) {
	var zero T
	if rank < 1 || rank > len(e.samples) {
		return zero, core.NewRankError(rank, len(e.samples))
	}
	return e.samples[rank-1], nil
}

// Min returns the smallest sample value.
func (e *Ecdf[T]) Min() T {
	return e.samples[0]
}

// Max returns the largest sample value.
func (e *Ecdf[T]) Max() T {
	return e.samples[len(e.samples)-1]
}

// nearestRank is ceil(p·n/scale).
func nearestRank(p, scale, n int) int {
	return (p*n + scale - 1) / scale
}

package ecdf

import (
	"kstest/domain/stats"
	"kstest/ports"
)

// Efficient computes D with a single merge over sorted copies of both
// samples.
type Efficient[T any] struct {
	ord ports.OrderPort[T]
}

// NewEfficient creates the merge-based comparator.
func NewEfficient[T any](ord ports.OrderPort[T]) *Efficient[T] {
	return &Efficient[T]{ord: ord}
}

// Distance sorts copies of xs and ys and merges them.
func (e *Efficient[T]) Distance(xs, ys []T) (float64, error) {
	if err := requireSamples(len(xs), len(ys)); err != nil {
		return 0, err
	}
	sx, err := SortedCopy(xs, e.ord)
	if err != nil {
		return 0, err
	}
	sy, err := SortedCopy(ys, e.ord)
	if err != nil {
		return 0, err
	}
	return e.DistanceSorted(sx, sy)
}

// DistanceSorted merges two samples that are already sorted ascending.
func (e *Efficient[T]) DistanceSorted(xs, ys []T) (float64, error) {
	n, m := len(xs), len(ys)
	if err := requireSamples(n, m); err != nil {
		return 0, err
	}

	rx, err := rankRuns(xs, e.ord)
	if err != nil {
		return 0, err
	}
	ry, err := rankRuns(ys, e.ord)
	if err != nil {
		return 0, err
	}

	// i and j count the elements of each sample that are <= the current
	// point. A value present in both samples advances both before the gap is
	// measured.
	var i, j int
	var a, b int
	var maxGap uint64
	for a < len(rx) && b < len(ry) {
		o, err := e.ord.Compare(rx[a].value, ry[b].value)
		if err != nil {
			return 0, err
		}
		switch o {
		case stats.Less:
			i = rx[a].rank
			a++
		case stats.Greater:
			j = ry[b].rank
			b++
		default:
			i = rx[a].rank
			j = ry[b].rank
			a++
			b++
		}
		if gap := stepGap(i, n, j, m); gap > maxGap {
			maxGap = gap
		}
	}

	// Once one sample is exhausted its ECDF sits at 1 and the other only
	// climbs towards 1, so the gap cannot grow any further.
	return gapToStatistic(maxGap, n, m), nil
}

var _ ports.SortedDistancePort[int] = (*Efficient[int])(nil)

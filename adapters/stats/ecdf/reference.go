package ecdf

import (
	"kstest/domain/stats"
	"kstest/ports"
)

// Reference computes D directly from the definition: both ECDFs are evaluated
// at every distinct value of either sample by counting. Quadratic in n+m.
type Reference[T any] struct {
	ord ports.OrderPort[T]
}

// NewReference creates the definition-based comparator.
func NewReference[T any](ord ports.OrderPort[T]) *Reference[T] {
	return &Reference[T]{ord: ord}
}

// Distance returns sup |Fn(x) − Gm(x)| over the union of both samples. The
// inputs need not be sorted.
func (r *Reference[T]) Distance(xs, ys []T) (float64, error) {
	n, m := len(xs), len(ys)
	if err := requireSamples(n, m); err != nil {
		return 0, err
	}

	points, err := r.distinct(xs, ys)
	if err != nil {
		return 0, err
	}

	var maxGap uint64
	for _, x := range points {
		i, err := r.countAtMost(xs, x)
		if err != nil {
			return 0, err
		}
		j, err := r.countAtMost(ys, x)
		if err != nil {
			return 0, err
		}
		if gap := stepGap(i, n, j, m); gap > maxGap {
			maxGap = gap
		}
	}
	return gapToStatistic(maxGap, n, m), nil
}

// distinct returns the union of both samples without duplicates, in input
// order.
func (r *Reference[T]) distinct(xs, ys []T) ([]T, error) {
	points := make([]T, 0, len(xs)+len(ys))
	for _, sample := range [][]T{xs, ys} {
	next:
		for _, v := range sample {
			for _, p := range points {
				o, err := r.ord.Compare(p, v)
				if err != nil {
					return nil, err
				}
				if o == stats.Equal {
					continue next
				}
			}
			points = append(points, v)
		}
	}
	return points, nil
}

func (r *Reference[T]) countAtMost(sample []T, x T) (int, error) {
	count := 0
	for _, v := range sample {
		o, err := r.ord.Compare(v, x)
		if err != nil {
			return 0, err
		}
		if o != stats.Greater {
			count++
		}
	}
	return count, nil
}

var _ ports.DistancePort[int] = (*Reference[int])(nil)

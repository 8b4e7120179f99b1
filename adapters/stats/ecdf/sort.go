package ecdf

import (
	"slices"

	"kstest/domain/core"
	"kstest/ports"
)

// SortedCopy returns a stably sorted copy of sample. The first comparison
// error aborts the result.
func SortedCopy[T any](sample []T, ord ports.OrderPort[T]) ([]T, error) {
	sorted := slices.Clone(sample)

	var cmpErr error
	slices.SortStableFunc(sorted, func(a, b T) int {
		o, err := ord.Compare(a, b)
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return int(o)
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	return sorted, nil
}

// upperBound returns the number of elements of sorted that are <= t.
func upperBound[T any](sorted []T, t T, ord ports.OrderPort[T]) (int, error) {
	lo, hi := 0, len(sorted)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		o, err := ord.Compare(sorted[mid], t)
		if err != nil {
			return 0, err
		}
		if o > 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}

func requireSamples(n, m int) error {
	if n == 0 {
		return core.NewEmptySampleError(core.SampleFirst)
	}
	if m == 0 {
		return core.NewEmptySampleError(core.SampleSecond)
	}
	return nil
}

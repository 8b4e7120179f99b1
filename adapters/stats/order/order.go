// Package order lifts value types into the total order the two-sample
// engine sorts and merges with.
//
// Floating point values only carry a partial order: NaN compares false with
// everything, including itself. Float refuses to place NaN anywhere and
// reports an UnorderableValueError instead, so a NaN can never silently
// corrupt a sort or the statistic computed from it. Every other float value,
// including the infinities, is ordered as IEEE 754 orders it, with -0 and +0
// comparing equal.
package order

import (
	"cmp"
	"math"

	"kstest/domain/core"
	"kstest/domain/stats"
	"kstest/ports"
)

// Floating is a constraint that permits any floating-point type.
type Floating interface {
	~float32 | ~float64
}

// Ordered is a constraint that permits the natively totally ordered types:
// integers and strings. Floats are deliberately excluded.
type Ordered interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~string
}

// Float is the total-order adapter for floating point samples.
type Float[F Floating] struct{}

// Compare orders a and b, failing if either is NaN.
func (Float[F]) Compare(a, b F) (stats.Ordering, error) {
	if math.IsNaN(float64(a)) {
		return stats.Equal, core.NewUnorderableValueError(a)
	}
	if math.IsNaN(float64(b)) {
		return stats.Equal, core.NewUnorderableValueError(b)
	}
	switch {
	case a < b:
		return stats.Less, nil
	case a > b:
		return stats.Greater, nil
	default:
		return stats.Equal, nil
	}
}

// Natural orders integer and string values. It never fails.
type Natural[T Ordered] struct{}

// Compare orders a and b.
func (Natural[T]) Compare(a, b T) (stats.Ordering, error) {
	return stats.OrderingOf(cmp.Compare(a, b)), nil
}

// Func lifts a three-way comparison function into an OrderPort. The function
// must describe a total order; it is trusted to never fail.
type Func[T any] func(a, b T) int

// Compare orders a and b.
func (f Func[T]) Compare(a, b T) (stats.Ordering, error) {
	return stats.OrderingOf(f(a, b)), nil
}

// Validate reports the first value in sample that ord cannot order. A value
// is orderable iff it compares successfully with itself.
func Validate[T any](name string, sample []T, ord ports.OrderPort[T]) error {
	for i, v := range sample {
		if _, err := ord.Compare(v, v); err != nil {
			return core.UnorderableAt(name, i, err)
		}
	}
	return nil
}

var (
	_ ports.OrderPort[float64] = Float[float64]{}
	_ ports.OrderPort[int64]   = Natural[int64]{}
	_ ports.OrderPort[string]  = Func[string](nil)
)

package ports

// DistancePort computes the two-sample statistic D: the supremum of the
// absolute difference between the empirical distribution functions of xs
// and ys. Implementations must not mutate or retain either sample.
type DistancePort[T any] interface {
	Distance(xs, ys []T) (float64, error)
}

// SortedDistancePort is implemented by comparators that can skip sorting
// when the caller already holds sorted copies.
type SortedDistancePort[T any] interface {
	DistancePort[T]
	DistanceSorted(xs, ys []T) (float64, error)
}

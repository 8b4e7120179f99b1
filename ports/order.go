package ports

import "kstest/domain/stats"

// OrderPort is the single comparison capability the engine needs from a
// value type. Implementations must define a total order over every value
// they accept and fail on values they declare unorderable.
type OrderPort[T any] interface {
	Compare(a, b T) (stats.Ordering, error)
}

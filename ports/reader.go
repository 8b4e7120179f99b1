package ports

import "context"

// SampleReaderPort loads a single-column sample from a data source.
type SampleReaderPort interface {
	ReadFloats(ctx context.Context, path string) ([]float64, error)
	ReadInts(ctx context.Context, path string) ([]int64, error)
}

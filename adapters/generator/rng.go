package generator

import (
	"context"
	"math/rand"

	"kstest/ports"
)

// RNGAdapter derives independent deterministic streams from a base seed and
// a stream name.
type RNGAdapter struct{}

// NewRNGAdapter creates an RNG adapter
func NewRNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// SeededStream creates a deterministic random number generator for a named
// operation. The same name and seed always yield the same stream; different
// names yield different streams.
func (r *RNGAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name != "" {
		seed = int64(hashString(name)) + seed
	}
	return rand.New(rand.NewSource(seed)), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}

var _ ports.RNGPort = (*RNGAdapter)(nil)

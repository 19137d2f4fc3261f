package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error)

	// Stream creates the generator for one block of trials. The same
	// (name, block, seed) triple always yields the same sequence, which lets
	// the tester spread blocks over workers without changing results.
	Stream(ctx context.Context, name string, block int, seed uint64) (*rand.Rand, error)

	// ValidateSeed ensures the seed produces expected deterministic results
	ValidateSeed(ctx context.Context, name string, seed uint64, expected []float64) error
}

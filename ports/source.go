package ports

import (
	"context"

	"gosigma/domain/core"
)

// Series is an ingested one-dimensional dataset
type Series struct {
	Name       string
	Values     []float64
	SampleRate int // samples per second; zero when the series has no time base
	Hash       core.Hash
}

// SeriesSource loads a dataset for an audit. Implementations report missing or
// malformed input as core.ErrDataUnavailable.
type SeriesSource interface {
	Load(ctx context.Context) (*Series, error)
}

// CatalogFetcher retrieves a remote list of measurements
type CatalogFetcher interface {
	Fetch(ctx context.Context) ([]float64, error)
}

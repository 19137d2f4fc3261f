package audit

import (
	"context"
	"math/rand/v2"

	"gosigma/adapters/excel"
	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// SeriesPermutationParams configures the spreadsheet permutation audit
type SeriesPermutationParams struct {
	TemplateLength int
	PrimeLimit     int
}

func DefaultSeriesPermutationParams() SeriesPermutationParams {
	return SeriesPermutationParams{TemplateLength: 1000, PrimeLimit: 43}
}

// SeriesPermutation compares a measured series' match to the lattice template
// with the match of its own random reorderings, so the null keeps the exact
// value distribution and only destroys ordering.
type SeriesPermutation struct {
	params   SeriesPermutationParams
	template []float64
	spikes   []spike
}

func NewSeriesPermutation(params SeriesPermutationParams) *SeriesPermutation {
	template := Template(params.TemplateLength, Primes(params.PrimeLimit))
	return &SeriesPermutation{
		params:   params,
		template: template,
		spikes:   sparse(template),
	}
}

func (a *SeriesPermutation) Name() string { return "series-permutation" }

func (a *SeriesPermutation) Description() string {
	return "lattice-template match of an xlsx/csv column (--input, --column) versus its permutations"
}

func (a *SeriesPermutation) Run(ctx context.Context, env Env) (*Outcome, error) {
	if env.Input == "" {
		return nil, core.NewConfigurationError("input", "an xlsx or csv file path is required")
	}
	if len(a.spikes) == 0 {
		return nil, core.NewConfigurationError("template_length", "too short to hold any lattice spike")
	}

	series, err := excel.NewSeriesReader(env.Input, env.Column, env.logger()).Load(ctx)
	if err != nil {
		return nil, err
	}
	normalized := zNormalize(series.Values)

	cfg := env.config()
	cfg.DatasetHash = series.Hash

	exp := significance.Experiment[[]float64]{
		Name: a.Name(),
		Observe: func(context.Context) ([]float64, error) {
			return normalized, nil
		},
		GenerateNull: func(r *rand.Rand) ([]float64, error) {
			shuffled := make([]float64, len(normalized))
			copy(shuffled, normalized)
			// Fisher-Yates
			for i := len(shuffled) - 1; i > 0; i-- {
				j := r.IntN(i + 1)
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			}
			return shuffled, nil
		},
		Score: func(values []float64) float64 {
			return maxCrossCorrelation(values, a.spikes, len(a.template))
		},
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), series.Name, result, err)
}

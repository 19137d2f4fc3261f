package audit

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// LatticeNoiseParams configures the prime-template noise audit
type LatticeNoiseParams struct {
	Length     int     // samples in the template and in every noise draw
	PrimeLimit int     // spikes are placed for primes up to this value
	Amplitude  float64 // scale of the observed signal
}

func DefaultLatticeNoiseParams() LatticeNoiseParams {
	return LatticeNoiseParams{Length: 1000, PrimeLimit: 43, Amplitude: 1.0}
}

// LatticeNoise asks whether Gaussian detector noise reproduces the prime
// lattice template as well as the template itself does.
type LatticeNoise struct {
	params   LatticeNoiseParams
	template []float64
	spikes   []spike
}

func NewLatticeNoise(params LatticeNoiseParams) *LatticeNoise {
	template := Template(params.Length, Primes(params.PrimeLimit))
	return &LatticeNoise{params: params, template: template, spikes: sparse(template)}
}

func (a *LatticeNoise) Name() string { return "lattice-noise" }

func (a *LatticeNoise) Description() string {
	return "max cross-correlation of N(0,1) noise against the 16/pi prime template"
}

func (a *LatticeNoise) Run(ctx context.Context, env Env) (*Outcome, error) {
	if a.params.Length <= 0 {
		return nil, core.NewConfigurationError("length", fmt.Sprintf("must be positive, got %d", a.params.Length))
	}
	if math.IsNaN(a.params.Amplitude) || math.IsInf(a.params.Amplitude, 0) {
		return nil, core.NewConfigurationError("amplitude", "must be finite")
	}
	if len(a.spikes) == 0 {
		return nil, core.NewConfigurationError("length", "too short to hold any lattice spike")
	}

	observed := make([]float64, len(a.template))
	copy(observed, a.template)
	floats.Scale(a.params.Amplitude, observed)

	cfg := env.config()
	cfg.DatasetHash = core.HashSeries(observed)

	exp := significance.Experiment[[]float64]{
		Name: a.Name(),
		Observe: func(context.Context) ([]float64, error) {
			return observed, nil
		},
		GenerateNull: func(r *rand.Rand) ([]float64, error) {
			normal := distuv.Normal{Mu: 0, Sigma: 1, Src: r}
			noise := make([]float64, a.params.Length)
			for i := range noise {
				noise[i] = normal.Rand()
			}
			return noise, nil
		},
		Score: func(signal []float64) float64 {
			return maxCrossCorrelation(signal, a.spikes, len(a.template))
		},
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), "synthetic lattice template", result, err)
}

package audit

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// StellarClumpingParams configures the period phase-clumping audit
type StellarClumpingParams struct {
	Stars          int
	LockedFraction float64 // share of the catalog placed on prime*16/π
	Primes         []int
	Jitter         float64 // relative standard deviation of locked periods
	MinPeriod      float64
	MaxPeriod      float64
	Bins           int
}

func DefaultStellarClumpingParams() StellarClumpingParams {
	return StellarClumpingParams{
		Stars:          5000,
		LockedFraction: 0.3,
		Primes:         []int{3, 7, 11, 13, 17, 43, 157},
		Jitter:         0.001,
		MinPeriod:      10,
		MaxPeriod:      5000,
		Bins:           50,
	}
}

// StellarClumping measures how unevenly period residuals modulo 16/π fill a
// histogram, comparing a partly phase-locked catalog to uniform ones.
type StellarClumping struct {
	params StellarClumpingParams
}

func NewStellarClumping(params StellarClumpingParams) *StellarClumping {
	return &StellarClumping{params: params}
}

func (a *StellarClumping) Name() string { return "stellar-clumping" }

func (a *StellarClumping) Description() string {
	return "histogram spread of period residuals mod 16/pi versus uniform catalogs"
}

func (a *StellarClumping) validate() error {
	p := a.params
	switch {
	case p.Stars <= 0:
		return core.NewConfigurationError("stars", fmt.Sprintf("must be positive, got %d", p.Stars))
	case p.LockedFraction < 0 || p.LockedFraction > 1:
		return core.NewConfigurationError("locked_fraction", "must be within [0, 1]")
	case p.LockedFraction > 0 && len(p.Primes) == 0:
		return core.NewConfigurationError("primes", "required when locked_fraction > 0")
	case !(p.MinPeriod > 0 && p.MaxPeriod > p.MinPeriod):
		return core.NewConfigurationError("period_range", "need 0 < min < max")
	case p.Bins < 2:
		return core.NewConfigurationError("bins", "need at least 2")
	}
	return nil
}

func (a *StellarClumping) Run(ctx context.Context, env Env) (*Outcome, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	cfg := env.config()

	catalogStream, err := cfg.RNG.SeededStream(ctx, a.Name()+"/catalog", cfg.Seed)
	if err != nil {
		return nil, err
	}
	catalog := a.synthesize(catalogStream)
	cfg.DatasetHash = core.HashSeries(catalog)

	exp := significance.Experiment[[]float64]{
		Name: a.Name(),
		Observe: func(context.Context) ([]float64, error) {
			return catalog, nil
		},
		GenerateNull: func(r *rand.Rand) ([]float64, error) {
			return a.uniformCatalog(r), nil
		},
		Score: func(periods []float64) float64 {
			return residualSpread(periods, a.params.Bins)
		},
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), "synthetic phase-locked catalog", result, err)
}

// synthesize builds the observed catalog: locked stars first, then uniform ones
func (a *StellarClumping) synthesize(r *rand.Rand) []float64 {
	p := a.params
	locked := int(float64(p.Stars) * p.LockedFraction)
	out := make([]float64, 0, p.Stars)

	jitter := distuv.Normal{Mu: 1, Sigma: p.Jitter, Src: r}
	for i := 0; i < locked; i++ {
		prime := p.Primes[r.IntN(len(p.Primes))]
		out = append(out, float64(prime)*LatticeRatio*jitter.Rand())
	}

	uniform := distuv.Uniform{Min: p.MinPeriod, Max: p.MaxPeriod, Src: r}
	for len(out) < p.Stars {
		out = append(out, uniform.Rand())
	}
	return out
}

func (a *StellarClumping) uniformCatalog(r *rand.Rand) []float64 {
	uniform := distuv.Uniform{Min: a.params.MinPeriod, Max: a.params.MaxPeriod, Src: r}
	out := make([]float64, a.params.Stars)
	for i := range out {
		out[i] = uniform.Rand()
	}
	return out
}

// residualSpread is the population std of bin counts of (period/16π) mod 1
// over `bins` equal bins on [0, 1).
func residualSpread(periods []float64, bins int) float64 {
	residuals := make([]float64, len(periods))
	for i, p := range periods {
		r := math.Mod(p/LatticeRatio, 1)
		if r < 0 {
			r += 1
		}
		if r >= 1 {
			r = 0
		}
		residuals[i] = r
	}
	sort.Float64s(residuals)

	dividers := floats.Span(make([]float64, bins+1), 0, 1)
	counts := stat.Histogram(nil, dividers, residuals, nil)
	_, std := stat.PopMeanStdDev(counts, nil)
	return std
}

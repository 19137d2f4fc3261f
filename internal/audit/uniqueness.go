package audit

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// ConstantUniquenessParams configures the random-constant spectrum audit
type ConstantUniquenessParams struct {
	Targets    []float64 // spectral peaks in Hz
	Tolerance  float64   // half-width of the acceptance window in Hz
	PrimeLimit int       // spectrum lines are generated for primes up to this value
	BaseBeat   float64   // Hz per unit of k*ln(p)
	KMin, KMax float64   // range of the random geometric constant
}

func DefaultConstantUniquenessParams() ConstantUniquenessParams {
	return ConstantUniquenessParams{
		Targets:    []float64{107, 127},
		Tolerance:  1.0,
		PrimeLimit: 499,
		BaseBeat:   3.53,
		KMin:       2,
		KMax:       10,
	}
}

// ConstantUniqueness draws a random geometric constant per trial and counts
// how many lines of its prime spectrum k*ln(p)*BaseBeat land on the target
// peaks, against the spectrum of 16/π itself.
type ConstantUniqueness struct {
	params ConstantUniquenessParams
	logs   []float64
}

func NewConstantUniqueness(params ConstantUniquenessParams) *ConstantUniqueness {
	primes := Primes(params.PrimeLimit)
	logs := make([]float64, len(primes))
	for i, p := range primes {
		logs[i] = math.Log(float64(p))
	}
	return &ConstantUniqueness{params: params, logs: logs}
}

func (a *ConstantUniqueness) Name() string { return "constant-uniqueness" }

func (a *ConstantUniqueness) Description() string {
	return "peak hits of k*ln(p)*3.53 for k ~ U(2,10) against k = 16/pi at 107 and 127 Hz"
}

func (a *ConstantUniqueness) Run(ctx context.Context, env Env) (*Outcome, error) {
	p := a.params
	switch {
	case len(p.Targets) == 0:
		return nil, core.NewConfigurationError("targets", "need at least one peak")
	case p.Tolerance <= 0:
		return nil, core.NewConfigurationError("tolerance", fmt.Sprintf("must be positive, got %v", p.Tolerance))
	case len(a.logs) == 0:
		return nil, core.NewConfigurationError("prime_limit", fmt.Sprintf("no primes up to %d", p.PrimeLimit))
	case !(p.KMin < p.KMax):
		return nil, core.NewConfigurationError("k_range", fmt.Sprintf("min %v must be below max %v", p.KMin, p.KMax))
	}

	cfg := env.config()
	cfg.DatasetHash = core.HashSeries(append([]float64{p.Tolerance, float64(p.PrimeLimit), p.BaseBeat, p.KMin, p.KMax}, p.Targets...))

	exp := significance.Experiment[float64]{
		Name: a.Name(),
		Observe: func(context.Context) (float64, error) {
			return LatticeRatio, nil
		},
		GenerateNull: func(r *rand.Rand) (float64, error) {
			return distuv.Uniform{Min: p.KMin, Max: p.KMax, Src: r}.Rand(), nil
		},
		Score: a.hits,
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), "fixed observation", result, err)
}

// hits counts (prime, target) pairs whose spectral line falls inside the window
func (a *ConstantUniqueness) hits(k float64) float64 {
	n := 0
	for _, lp := range a.logs {
		f := k * lp * a.params.BaseBeat
		for _, target := range a.params.Targets {
			if math.Abs(f-target) < a.params.Tolerance {
				n++
			}
		}
	}
	return float64(n)
}

package audit

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// InertModulusParams configures the modulus mimicry audit
type InertModulusParams struct {
	Observed  float64 // the measured offset being tested
	Scale     float64 // multiplier on the LogNormal(0,1) draw
	JitterStd float64 // standard deviation of the additive Normal term
	Tolerance float64 // window counted as a mimicry match
}

func DefaultInertModulusParams() InertModulusParams {
	return InertModulusParams{Observed: 0.20, Scale: 0.005, JitterStd: 0.002, Tolerance: 1e-4}
}

// InertModulus checks whether an inert log-normal process lands on the
// observed offset by chance.
type InertModulus struct {
	params InertModulusParams
}

func NewInertModulus(params InertModulusParams) *InertModulus {
	return &InertModulus{params: params}
}

func (a *InertModulus) Name() string { return "inert-modulus" }

func (a *InertModulus) Description() string {
	return "0.005*LogNormal(0,1) + N(0,0.002) against the 0.20 agency offset"
}

func (a *InertModulus) Run(ctx context.Context, env Env) (*Outcome, error) {
	cfg := env.config()
	if cfg.Tolerance == 0 {
		cfg.Tolerance = a.params.Tolerance
	}
	p := a.params
	cfg.DatasetHash = core.HashSeries([]float64{p.Observed, p.Scale, p.JitterStd, p.Tolerance})

	exp := significance.Experiment[float64]{
		Name: a.Name(),
		Observe: func(context.Context) (float64, error) {
			return a.params.Observed, nil
		},
		GenerateNull: func(r *rand.Rand) (float64, error) {
			base := distuv.LogNormal{Mu: 0, Sigma: 1, Src: r}.Rand()
			jitter := distuv.Normal{Mu: 0, Sigma: a.params.JitterStd, Src: r}.Rand()
			return a.params.Scale*base + jitter, nil
		},
		Score: func(v float64) float64 { return v },
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), "fixed observation", result, err)
}

package audit

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/adapters/catalog"
	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// PrimeLockParams configures the catalog prime-beat audit
type PrimeLockParams struct {
	Drag   float64 // conversion factor applied before dividing by 16/π
	Window float64 // max distance from an integer beat that counts as locked
}

func DefaultPrimeLockParams() PrimeLockParams {
	return PrimeLockParams{Drag: 1.0101, Window: 0.1}
}

// PrimeLock scores the share of catalog periods that sit on an integer number
// of lattice beats, against catalogs drawn uniformly over the same range.
type PrimeLock struct {
	params PrimeLockParams
}

func NewPrimeLock(params PrimeLockParams) *PrimeLock {
	return &PrimeLock{params: params}
}

func (a *PrimeLock) Name() string { return "prime-lock" }

func (a *PrimeLock) Description() string {
	return "fraction of catalog periods within 0.1 of an integer 16/pi beat (live or canned)"
}

func (a *PrimeLock) Run(ctx context.Context, env Env) (*Outcome, error) {
	resolution := catalog.Resolve(ctx, env.Gate, env.Fetcher, env.logger())
	signals := resolution.Signals
	if len(signals) == 0 {
		return nil, core.NewDataUnavailableError("catalog", nil)
	}
	lo, hi := floats.Min(signals), floats.Max(signals)

	source := string(resolution.Source)
	if resolution.Reason != "" {
		source += " (" + resolution.Reason + ")"
	}
	env.logger().Info("[PrimeLock] %d signals from %s catalog, range [%.4g, %.4g]", len(signals), source, lo, hi)

	cfg := env.config()
	cfg.DatasetHash = core.HashSeries(signals)

	exp := significance.Experiment[[]float64]{
		Name: a.Name(),
		Observe: func(context.Context) ([]float64, error) {
			return signals, nil
		},
		GenerateNull: func(r *rand.Rand) ([]float64, error) {
			out := make([]float64, len(signals))
			if hi == lo {
				for i := range out {
					out[i] = lo
				}
				return out, nil
			}
			uniform := distuv.Uniform{Min: lo, Max: hi, Src: r}
			for i := range out {
				out[i] = uniform.Rand()
			}
			return out, nil
		},
		Score: a.lockedFraction,
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), source, result, err)
}

func (a *PrimeLock) lockedFraction(periods []float64) float64 {
	if len(periods) == 0 {
		return 0
	}
	locked := 0
	for _, ms := range periods {
		beats := ms * a.params.Drag / LatticeRatio
		if math.Abs(math.Round(beats)-beats) < a.params.Window {
			locked++
		}
	}
	return float64(locked) / float64(len(periods))
}

package significance

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/domain/core"
	"gosigma/domain/run"
	"gosigma/domain/stats"
)

// Experiment describes one significance test. Observe is called once;
// GenerateNull is called once per trial and must draw randomness only from
// the generator it is handed, so trials stay independent and replayable.
type Experiment[S any] struct {
	Name         string
	Observe      func(ctx context.Context) (S, error)
	GenerateNull func(rng *rand.Rand) (S, error)
	Score        func(S) float64
}

func (e Experiment[S]) validate() error {
	if e.Observe == nil {
		return core.NewConfigurationError("observe", "is required")
	}
	if e.GenerateNull == nil {
		return core.NewConfigurationError("generate_null", "is required")
	}
	if e.Score == nil {
		return core.NewConfigurationError("score", "is required")
	}
	return nil
}

// Run scores the observation, builds the null distribution and derives sigma
// and the empirical p-value.
//
// Trials are split into blocks of cfg.BlockSize and block b always draws from
// RNG.Stream(name, b, seed), so the distribution is bit-identical for any
// worker count. A zero null standard deviation under DegenerateFail returns the
// result alongside an error wrapping core.ErrDegenerateDistribution.
func Run[S any](ctx context.Context, cfg Config, exp Experiment[S]) (*stats.TestResult, error) {
	if err := exp.validate(); err != nil {
		return nil, err
	}
	if exp.Name == "" {
		exp.Name = "significance"
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	manifest := run.NewManifest(exp.Name, cfg.DatasetHash, cfg.Seed, cfg.Trials, cfg.BlockSize,
		cfg.Workers, cfg.Direction, cfg.CodeVersion)
	logger := cfg.Logger
	logger.Info("[Significance] %s: starting run %s (trials=%d seed=%d workers=%d)",
		exp.Name, manifest.RunID, cfg.Trials, cfg.Seed, cfg.Workers)
	start := time.Now()

	observedSample, err := exp.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe %s: %w", exp.Name, err)
	}
	observed := exp.Score(observedSample)
	if !isFinite(observed) {
		return nil, core.NewObservationError("observed score", observed)
	}

	dist, err := sampleNull(ctx, cfg, exp)
	if err != nil {
		return nil, err
	}
	if dist.Len() != cfg.Trials {
		return nil, fmt.Errorf("%w: null distribution holds %d scores, expected %d",
			core.ErrInvariantBroken, dist.Len(), cfg.Trials)
	}

	summary, err := dist.Summary()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvariantBroken, err)
	}

	exceedances := dist.CountExtreme(observed, summary.Mean, cfg.Direction)
	result := &stats.TestResult{
		RunID:        manifest.RunID,
		Experiment:   exp.Name,
		Trials:       cfg.Trials,
		Seed:         cfg.Seed,
		Direction:    cfg.Direction,
		Fingerprint:  manifest.Fingerprint.Fingerprint,
		Observed:     observed,
		NullMean:     summary.Mean,
		NullStd:      summary.StdDev,
		PValue:       float64(exceedances) / float64(cfg.Trials),
		Exceedances:  exceedances,
		Tolerance:    cfg.Tolerance,
		Null:         summary,
		Distribution: dist,
	}
	if cfg.Tolerance > 0 {
		result.ToleranceMatches = dist.CountWithin(observed, cfg.Tolerance)
	}

	var degenerateErr error
	if summary.StdDev > 0 {
		result.Sigma = (observed - summary.Mean) / summary.StdDev
	} else {
		result.Degenerate = true
		result.Sigma, degenerateErr = applyDegeneratePolicy(cfg.Degenerate, observed, summary.Mean)
		if degenerateErr != nil {
			degenerateErr = fmt.Errorf("%w: %s null std is zero over %d trials",
				degenerateErr, exp.Name, cfg.Trials)
		}
	}
	result.GaussianP = distuv.UnitNormal.Survival(result.Sigma)
	result.Duration = time.Since(start)
	result.CompletedAt = core.Now()

	logger.Info("[Significance] %s: observed=%.6g null=%.6g±%.6g sigma=%.3f p=%.6g (%v)",
		exp.Name, observed, summary.Mean, summary.StdDev, result.Sigma, result.PValue, result.Duration)

	return result, degenerateErr
}

func applyDegeneratePolicy(policy DegeneratePolicy, observed, mean float64) (float64, error) {
	switch policy {
	case DegenerateZero:
		return 0, nil
	case DegenerateInfinite:
		switch {
		case observed > mean:
			return math.Inf(1), nil
		case observed < mean:
			return math.Inf(-1), nil
		default:
			return 0, nil
		}
	default:
		return math.NaN(), core.ErrDegenerateDistribution
	}
}

// sampleNull fills one private distribution per block, then concatenates them in block order
func sampleNull[S any](ctx context.Context, cfg Config, exp Experiment[S]) (*stats.NullDistribution, error) {
	numBlocks := (cfg.Trials + cfg.BlockSize - 1) / cfg.BlockSize
	blocks := make([]*stats.NullDistribution, numBlocks)
	var done atomic.Int64

	workers := cfg.Workers
	if workers > numBlocks {
		workers = numBlocks
	}

	if workers <= 1 {
		for b := 0; b < numBlocks; b++ {
			d, err := runBlock(ctx, cfg, exp, b, &done)
			if err != nil {
				return nil, err
			}
			blocks[b] = d
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		next := make(chan int)

		g.Go(func() error {
			defer close(next)
			for b := 0; b < numBlocks; b++ {
				select {
				case next <- b:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})

		for w := 0; w < workers; w++ {
			g.Go(func() error {
				for b := range next {
					d, err := runBlock(gctx, cfg, exp, b, &done)
					if err != nil {
						return err
					}
					blocks[b] = d
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	merged := stats.NewNullDistribution(cfg.Trials)
	for _, d := range blocks {
		merged.Merge(d)
	}
	return merged, nil
}

// runBlock executes trials [b*BlockSize, min((b+1)*BlockSize, Trials))
func runBlock[S any](ctx context.Context, cfg Config, exp Experiment[S], b int, done *atomic.Int64) (*stats.NullDistribution, error) {
	lo := b * cfg.BlockSize
	hi := lo + cfg.BlockSize
	if hi > cfg.Trials {
		hi = cfg.Trials
	}

	stream, err := cfg.RNG.Stream(ctx, exp.Name, b, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("random stream for block %d: %w", b, err)
	}

	d := stats.NewNullDistribution(hi - lo)
	for i := lo; i < hi; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sample, err := exp.GenerateNull(stream)
		if err != nil {
			return nil, fmt.Errorf("null trial %d: %w", i, err)
		}
		score := exp.Score(sample)
		if !isFinite(score) {
			return nil, core.NewObservationError(fmt.Sprintf("null trial %d", i), score)
		}
		d.Append(score)
	}

	total := done.Add(int64(hi - lo))
	cfg.Logger.Debug("[Significance] %s: block %d complete (%d/%d trials)", exp.Name, b, total, cfg.Trials)
	return d, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

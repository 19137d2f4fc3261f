package significance

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"gosigma/domain/core"
	"gosigma/domain/stats"
	"gosigma/internal"
)

var quiet = internal.NewLogger(internal.LogLevelError)

func identity(v float64) float64 { return v }

func constantExperiment(observed, null float64) Experiment[float64] {
	return Experiment[float64]{
		Name:         "constant",
		Observe:      func(context.Context) (float64, error) { return observed, nil },
		GenerateNull: func(*rand.Rand) (float64, error) { return null, nil },
		Score:        identity,
	}
}

func normalExperiment(observed float64) Experiment[float64] {
	return Experiment[float64]{
		Name:    "standard-normal",
		Observe: func(context.Context) (float64, error) { return observed, nil },
		GenerateNull: func(r *rand.Rand) (float64, error) {
			return distuv.Normal{Mu: 0, Sigma: 1, Src: r}.Rand(), nil
		},
		Score: identity,
	}
}

func TestRun_DistributionSizeMatchesTrials(t *testing.T) {
	for _, trials := range []int{2, 7, 100, 1024, 1025, 3000} {
		result, err := Run(context.Background(), Config{Trials: trials, BlockSize: 256, Logger: quiet}, normalExperiment(1))
		require.NoError(t, err)
		assert.Equal(t, trials, result.Distribution.Len())
		assert.Equal(t, trials, result.Trials)
		assert.Equal(t, trials, result.Null.Count)
	}
}

func TestRun_RejectsNonPositiveTrials(t *testing.T) {
	for _, trials := range []int{0, -1, -1000} {
		result, err := Run(context.Background(), Config{Trials: trials, Logger: quiet}, normalExperiment(1))
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, core.ErrInvalidConfiguration), "trials=%d err=%v", trials, err)
	}
}

func TestRun_RejectsIncompleteExperiment(t *testing.T) {
	exp := normalExperiment(1)
	exp.Score = nil

	_, err := Run(context.Background(), Config{Trials: 10, Logger: quiet}, exp)
	assert.True(t, errors.Is(err, core.ErrInvalidConfiguration))
}

func TestRun_RejectsBadConfigFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative block size", Config{Trials: 10, BlockSize: -1}},
		{"negative tolerance", Config{Trials: 10, Tolerance: -0.5}},
		{"unknown direction", Config{Trials: 10, Direction: "sideways"}},
		{"unknown degenerate policy", Config{Trials: 10, Degenerate: "shrug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logger = quiet
			_, err := Run(context.Background(), tt.cfg, normalExperiment(1))
			assert.True(t, errors.Is(err, core.ErrInvalidConfiguration), "err=%v", err)
		})
	}
}

// Constant nulls: observed 10 against a null that is always 0
func TestRun_ConstantNullIsDegenerate(t *testing.T) {
	result, err := Run(context.Background(), Config{Trials: 100, Logger: quiet}, constantExperiment(10, 0))

	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDegenerateDistribution))
	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.NullMean)
	assert.Equal(t, 0.0, result.NullStd)
	assert.True(t, result.Degenerate)
	assert.True(t, math.IsNaN(result.Sigma))
	assert.Equal(t, 100, result.Distribution.Len())
	assert.Equal(t, 0, result.Exceedances)
}

func TestRun_SingleTrialIsDegenerate(t *testing.T) {
	result, err := Run(context.Background(), Config{Trials: 1, Logger: quiet}, normalExperiment(3))

	assert.True(t, errors.Is(err, core.ErrDegenerateDistribution))
	require.NotNil(t, result)
	assert.Equal(t, 0.0, result.NullStd)
	assert.Equal(t, 1, result.Distribution.Len())
}

func TestRun_DegeneratePolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   DegeneratePolicy
		observed float64
		expected float64
	}{
		{"zero", DegenerateZero, 10, 0},
		{"infinite above", DegenerateInfinite, 10, math.Inf(1)},
		{"infinite below", DegenerateInfinite, -10, math.Inf(-1)},
		{"infinite equal", DegenerateInfinite, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(context.Background(),
				Config{Trials: 50, Degenerate: tt.policy, Logger: quiet},
				constantExperiment(tt.observed, 0))

			require.NoError(t, err)
			assert.True(t, result.Degenerate)
			assert.Equal(t, tt.expected, result.Sigma)
		})
	}
}

// Standard normal null, observed 5 sigma out
func TestRun_StandardNormalFiveSigma(t *testing.T) {
	result, err := Run(context.Background(),
		Config{Trials: 10000, Seed: 20260101, Logger: quiet},
		normalExperiment(5.0))

	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.NullMean, 0.05)
	assert.InDelta(t, 1.0, result.NullStd, 0.05)
	assert.InDelta(t, 5.0, result.Sigma, 0.1)
	assert.Less(t, result.PValue, 0.001)
	assert.Less(t, result.GaussianP, 1e-5)
	assert.False(t, result.Degenerate)
}

func TestRun_SeededRunsAreBitIdentical(t *testing.T) {
	cfg := Config{Trials: 2500, Seed: 7, BlockSize: 300, Logger: quiet}

	first, err := Run(context.Background(), cfg, normalExperiment(1.5))
	require.NoError(t, err)
	second, err := Run(context.Background(), cfg, normalExperiment(1.5))
	require.NoError(t, err)

	assert.Equal(t, first.Distribution.Values(), second.Distribution.Values())
	assert.Equal(t, first.NullMean, second.NullMean)
	assert.Equal(t, first.NullStd, second.NullStd)
	assert.Equal(t, first.Sigma, second.Sigma)
	assert.Equal(t, first.PValue, second.PValue)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	a, err := Run(context.Background(), Config{Trials: 200, Seed: 1, Logger: quiet}, normalExperiment(1))
	require.NoError(t, err)
	b, err := Run(context.Background(), Config{Trials: 200, Seed: 2, Logger: quiet}, normalExperiment(1))
	require.NoError(t, err)

	assert.NotEqual(t, a.Distribution.Values(), b.Distribution.Values())
	assert.NotEqual(t, a.Fingerprint, b.Fingerprint)
}

func TestRun_ParallelWorkersMatchSequential(t *testing.T) {
	base := Config{Trials: 5003, Seed: 99, BlockSize: 128, Logger: quiet}

	sequential, err := Run(context.Background(), base, normalExperiment(2))
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16, 100} {
		cfg := base
		cfg.Workers = workers
		parallel, err := Run(context.Background(), cfg, normalExperiment(2))
		require.NoError(t, err)

		assert.Equal(t, sequential.Distribution.Values(), parallel.Distribution.Values(), "workers=%d", workers)
		assert.Equal(t, sequential.NullMean, parallel.NullMean)
		assert.Equal(t, sequential.NullStd, parallel.NullStd)
		assert.Equal(t, sequential.Sigma, parallel.Sigma)
		assert.Equal(t, sequential.Fingerprint, parallel.Fingerprint)
	}
}

func TestRun_MergedBlocksMatchConcatenatedStreams(t *testing.T) {
	// Drawing every block by hand from the same streams and concatenating
	// must reproduce what the tester accumulates.
	cfg := Config{Trials: 1000, Seed: 5, BlockSize: 250, Workers: 4, Logger: quiet}
	result, err := Run(context.Background(), cfg, normalExperiment(0))
	require.NoError(t, err)

	adapter := cfg.withDefaults().RNG
	manual := stats.NewNullDistribution(cfg.Trials)
	for b := 0; b < 4; b++ {
		r, err := adapter.Stream(context.Background(), "standard-normal", b, cfg.Seed)
		require.NoError(t, err)
		part := stats.NewNullDistribution(cfg.BlockSize)
		for i := 0; i < cfg.BlockSize; i++ {
			part.Append(distuv.Normal{Mu: 0, Sigma: 1, Src: r}.Rand())
		}
		manual.Merge(part)
	}

	assert.Equal(t, manual.Values(), result.Distribution.Values())
}

func TestRun_NonFiniteNullScoreAborts(t *testing.T) {
	var calls atomic.Int64
	exp := Experiment[float64]{
		Name:    "poisoned",
		Observe: func(context.Context) (float64, error) { return 1, nil },
		GenerateNull: func(r *rand.Rand) (float64, error) {
			if calls.Add(1) == 37 {
				return math.NaN(), nil
			}
			return r.Float64(), nil
		},
		Score: identity,
	}

	for _, workers := range []int{1, 4} {
		calls.Store(0)
		result, err := Run(context.Background(), Config{Trials: 500, BlockSize: 50, Workers: workers, Logger: quiet}, exp)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, core.ErrInvalidObservation), "workers=%d err=%v", workers, err)
	}
}

func TestRun_NonFiniteObservationAborts(t *testing.T) {
	result, err := Run(context.Background(), Config{Trials: 10, Logger: quiet}, constantExperiment(math.Inf(1), 0))
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, core.ErrInvalidObservation))
}

func TestRun_ObserveErrorPropagates(t *testing.T) {
	exp := normalExperiment(0)
	exp.Observe = func(context.Context) (float64, error) {
		return 0, core.NewDataUnavailableError("signal.wav", nil)
	}

	_, err := Run(context.Background(), Config{Trials: 10, Logger: quiet}, exp)
	assert.True(t, errors.Is(err, core.ErrDataUnavailable))
}

func TestRun_GeneratorErrorAbortsRun(t *testing.T) {
	boom := errors.New("generator exploded")
	exp := normalExperiment(0)
	exp.GenerateNull = func(*rand.Rand) (float64, error) { return 0, boom }

	_, err := Run(context.Background(), Config{Trials: 10, Workers: 3, BlockSize: 2, Logger: quiet}, exp)
	assert.ErrorIs(t, err, boom)
}

func TestRun_CancelledBetweenTrials(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	exp := normalExperiment(0)
	exp.GenerateNull = func(r *rand.Rand) (float64, error) {
		if calls.Add(1) == 50 {
			cancel()
		}
		return r.NormFloat64(), nil
	}

	result, err := Run(ctx, Config{Trials: 10000, Logger: quiet}, exp)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(50), calls.Load())
}

func TestRun_DirectionAndTolerance(t *testing.T) {
	// Null scores cycle 0..9 exactly so counts are predictable
	var next atomic.Int64
	exp := Experiment[float64]{
		Name:    "ladder",
		Observe: func(context.Context) (float64, error) { return 7, nil },
		GenerateNull: func(*rand.Rand) (float64, error) {
			return float64((next.Add(1) - 1) % 10), nil
		},
		Score: identity,
	}

	result, err := Run(context.Background(), Config{Trials: 100, Tolerance: 1, Logger: quiet}, exp)
	require.NoError(t, err)
	assert.Equal(t, 30, result.Exceedances) // 7, 8, 9
	assert.InDelta(t, 0.30, result.PValue, 1e-12)
	assert.Equal(t, 30, result.ToleranceMatches) // 6, 7, 8

	next.Store(0)
	result, err = Run(context.Background(), Config{Trials: 100, Direction: stats.DirectionLess, Logger: quiet}, exp)
	require.NoError(t, err)
	assert.Equal(t, 80, result.Exceedances) // 0..7
	assert.Equal(t, 0, result.ToleranceMatches)
}

func TestRun_TwoSidedMeasuresFromNullMean(t *testing.T) {
	exp := Experiment[float64]{
		Name:    "shifted-normal",
		Observe: func(context.Context) (float64, error) { return 5, nil },
		GenerateNull: func(r *rand.Rand) (float64, error) {
			return distuv.Normal{Mu: 10, Sigma: 1, Src: r}.Rand(), nil
		},
		Score: identity,
	}

	cfg := Config{Trials: 10000, Seed: 7, Direction: stats.DirectionTwoSided, Logger: quiet}
	result, err := Run(context.Background(), cfg, exp)
	require.NoError(t, err)

	assert.InDelta(t, -5, result.Sigma, 0.2)
	assert.Less(t, result.PValue, 0.001)

	// the mirrored observation above the mean is just as extreme
	mirrored := exp
	mirrored.Observe = func(context.Context) (float64, error) { return 15, nil }
	upper, err := Run(context.Background(), cfg, mirrored)
	require.NoError(t, err)
	assert.Less(t, upper.PValue, 0.001)
}

func TestParseDegeneratePolicy(t *testing.T) {
	p, err := ParseDegeneratePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DegenerateFail, p)

	p, err = ParseDegeneratePolicy("INF")
	require.NoError(t, err)
	assert.Equal(t, DegenerateInfinite, p)

	_, err = ParseDegeneratePolicy("maybe")
	assert.Error(t, err)
}

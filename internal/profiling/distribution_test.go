package profiling

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func draw(n int, dist interface{ Rand() float64 }) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

func TestAnalyzeNull_NormalSample(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	shape, err := AnalyzeNull(draw(5000, distuv.Normal{Mu: 0, Sigma: 1, Src: r}))
	require.NoError(t, err)

	assert.InDelta(t, 0, shape.Skewness, 0.15)
	assert.InDelta(t, 0, shape.ExcessKurtosis, 0.3)
	assert.Equal(t, 5000, shape.N)
	assert.Greater(t, shape.Outliers, 0)
}

func TestAnalyzeNull_SkewedSample(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	shape, err := AnalyzeNull(draw(5000, distuv.LogNormal{Mu: 0, Sigma: 1, Src: r}))
	require.NoError(t, err)

	assert.Greater(t, shape.Skewness, 2.0)
	assert.False(t, shape.Gaussian)
	assert.Less(t, shape.PValue, 1e-6)
}

func TestAnalyzeNull_Rejects(t *testing.T) {
	_, err := AnalyzeNull([]float64{1, 2, 3})
	assert.Error(t, err)

	_, err = AnalyzeNull([]float64{5, 5, 5, 5, 5, 5, 5, 5, 5})
	assert.Error(t, err)
}

func TestDetectOutliers(t *testing.T) {
	assert.Equal(t, 1, detectOutliers([]float64{1, 2, 3, 4, 100}, 2, 4))
	assert.Equal(t, 0, detectOutliers([]float64{1, 2, 3}, 1, 3))
}

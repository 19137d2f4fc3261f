// Package profiling checks whether a null distribution is close enough to
// normal for a Gaussian sigma to mean what it usually means.
package profiling

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MinScores is the smallest sample the shape analysis accepts
const MinScores = 8

// NormalityAlpha is the Jarque-Bera level below which the null is flagged
const NormalityAlpha = 0.05

// NullShape summarizes the shape of a null distribution
type NullShape struct {
	N              int     `json:"n"`
	Skewness       float64 `json:"skewness"`
	ExcessKurtosis float64 `json:"excess_kurtosis"`
	JarqueBera     float64 `json:"jarque_bera"`
	PValue         float64 `json:"p_value"`
	Gaussian       bool    `json:"gaussian"`
	Outliers       int     `json:"outliers"` // outside 1.5 IQR of the quartiles
}

// AnalyzeNull computes skewness, excess kurtosis and the Jarque-Bera test.
// Constant or tiny samples are an error.
func AnalyzeNull(data []float64) (NullShape, error) {
	shape := NullShape{N: len(data)}
	if len(data) < MinScores {
		return shape, fmt.Errorf("need at least %d scores, got %d", MinScores, len(data))
	}

	_, stdDev := stat.PopMeanStdDev(data, nil)
	if stdDev == 0 {
		return shape, fmt.Errorf("null distribution is constant")
	}

	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return shape, err
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return shape, err
	}

	shape.Skewness = stat.Skew(data, nil)
	shape.ExcessKurtosis = stat.ExKurtosis(data, nil)

	n := float64(len(data))
	shape.JarqueBera = n / 6 * (shape.Skewness*shape.Skewness + shape.ExcessKurtosis*shape.ExcessKurtosis/4)
	shape.PValue = distuv.ChiSquared{K: 2}.Survival(shape.JarqueBera)
	shape.Gaussian = shape.PValue > NormalityAlpha
	shape.Outliers = detectOutliers(data, q25, q75)

	return shape, nil
}

// detectOutliers identifies outliers using IQR method
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}

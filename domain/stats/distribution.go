package stats

import (
	"fmt"
	"math"
	"strings"

	mstats "github.com/montanaflynn/stats"
)

// Direction fixes which null scores count as "at least as extreme" as the observation
type Direction string

const (
	DirectionGreater  Direction = "greater"   // null >= observed
	DirectionLess     Direction = "less"      // null <= observed
	DirectionTwoSided Direction = "two-sided" // |null-mean| >= |observed-mean|
)

// ParseDirection accepts the canonical names plus a few common aliases
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "greater", "upper", ">":
		return DirectionGreater, nil
	case "less", "lower", "<":
		return DirectionLess, nil
	case "two-sided", "two_sided", "both", "abs":
		return DirectionTwoSided, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// Exceeds reports whether a null score is at least as extreme as the observed
// score in this direction. Two-sided distances are measured from center, the
// null mean.
func (d Direction) Exceeds(null, observed, center float64) bool {
	switch d {
	case DirectionLess:
		return null <= observed
	case DirectionTwoSided:
		return math.Abs(null-center) >= math.Abs(observed-center)
	default:
		return null >= observed
	}
}

// NullDistribution accumulates the scores of null trials for a single run.
// It is append-only and must not be shared between concurrent runs; parallel
// workers fill private distributions and Merge them once they are done.
type NullDistribution struct {
	scores []float64
}

// NewNullDistribution creates an empty distribution with room for capacity scores
func NewNullDistribution(capacity int) *NullDistribution {
	if capacity < 0 {
		capacity = 0
	}
	return &NullDistribution{scores: make([]float64, 0, capacity)}
}

// Append records one trial score
func (d *NullDistribution) Append(score float64) {
	d.scores = append(d.scores, score)
}

// Merge concatenates other onto d, preserving other's order
func (d *NullDistribution) Merge(other *NullDistribution) {
	if other == nil {
		return
	}
	d.scores = append(d.scores, other.scores...)
}

// Len returns the number of recorded trials
func (d *NullDistribution) Len() int {
	return len(d.scores)
}

// Values returns a copy of the recorded scores in insertion order
func (d *NullDistribution) Values() []float64 {
	out := make([]float64, len(d.scores))
	copy(out, d.scores)
	return out
}

// CountExtreme counts null scores at least as extreme as observed; center is
// the null mean and only matters for two-sided counts
func (d *NullDistribution) CountExtreme(observed, center float64, direction Direction) int {
	count := 0
	for _, s := range d.scores {
		if direction.Exceeds(s, observed, center) {
			count++
		}
	}
	return count
}

// CountWithin counts null scores inside [center-tolerance, center+tolerance]
func (d *NullDistribution) CountWithin(center, tolerance float64) int {
	count := 0
	for _, s := range d.scores {
		if s >= center-tolerance && s <= center+tolerance {
			count++
		}
	}
	return count
}

// Summary provides key statistics about the null distribution
type Summary struct {
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"` // population convention, divides by Count
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}

// Summary computes the distribution summary. An empty distribution is an error.
func (d *NullDistribution) Summary() (Summary, error) {
	if len(d.scores) == 0 {
		return Summary{}, fmt.Errorf("null distribution is empty")
	}
	data := mstats.Float64Data(d.scores)

	mean, err := mstats.Mean(data)
	if err != nil {
		return Summary{}, fmt.Errorf("mean: %w", err)
	}
	stdDev, err := mstats.StandardDeviationPopulation(data)
	if err != nil {
		return Summary{}, fmt.Errorf("standard deviation: %w", err)
	}
	min, _ := mstats.Min(data)
	max, _ := mstats.Max(data)
	median, _ := mstats.Median(data)
	p95, _ := mstats.Percentile(data, 95)
	p99, _ := mstats.Percentile(data, 99)

	return Summary{
		Count:        len(d.scores),
		Mean:         mean,
		StdDev:       stdDev,
		Min:          min,
		Max:          max,
		Median:       median,
		Percentile95: p95,
		Percentile99: p99,
	}, nil
}

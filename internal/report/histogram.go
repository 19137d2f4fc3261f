package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"gosigma/domain/stats"
)

const barWidth = 40

// WriteHistogram draws the null distribution as horizontal bars
func WriteHistogram(w io.Writer, dist *stats.NullDistribution, bins int) error {
	if dist == nil || dist.Len() == 0 {
		return fmt.Errorf("null distribution is empty")
	}
	if bins < 1 {
		bins = DefaultBins
	}

	values := dist.Values()
	sort.Float64s(values)
	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		_, err := fmt.Fprintf(w, "all %d null scores equal %.6g\n", len(values), lo)
		return err
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the last bin is half-open, so nudge it past the maximum
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)
	peak := floats.Max(counts)

	for i, c := range counts {
		bar := int(math.Round(c / peak * barWidth))
		if _, err := fmt.Fprintf(w, "%12.6g | %-*s %d\n",
			dividers[i], barWidth, strings.Repeat("#", bar), int(c)); err != nil {
			return err
		}
	}
	return nil
}

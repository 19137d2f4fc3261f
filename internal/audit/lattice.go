package audit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	// LatticeRatio is the 16/π spacing every audit measures against
	LatticeRatio = 16 / math.Pi
	// AgencyOffset is the small additive shift applied to the WAV tick grid
	AgencyOffset = 1.42e-7
)

// Primes returns every prime <= limit in ascending order
func Primes(limit int) []int {
	if limit < 2 {
		return nil
	}
	composite := make([]bool, limit+1)
	var out []int
	for n := 2; n <= limit; n++ {
		if composite[n] {
			continue
		}
		out = append(out, n)
		for m := n * n; m <= limit; m += n {
			composite[m] = true
		}
	}
	return out
}

// Template is a zero signal of the given length with a unit spike at
// int(p*LatticeRatio) for every prime p that lands inside it.
func Template(length int, primes []int) []float64 {
	t := make([]float64, length)
	for _, p := range primes {
		if i := int(float64(p) * LatticeRatio); i < length {
			t[i] = 1
		}
	}
	return t
}

type spike struct {
	at    int
	value float64
}

// sparse lists the non-zero entries of a template
func sparse(template []float64) []spike {
	var out []spike
	for i, v := range template {
		if v != 0 {
			out = append(out, spike{at: i, value: v})
		}
	}
	return out
}

// maxCrossCorrelation is max over every full-mode lag k of
// sum_n signal[n+k]*template[n], evaluated over the template's spikes only.
func maxCrossCorrelation(signal []float64, spikes []spike, templateLen int) float64 {
	if len(signal) == 0 || len(spikes) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for k := -(templateLen - 1); k < len(signal); k++ {
		var sum float64
		for _, s := range spikes {
			if i := s.at + k; i >= 0 && i < len(signal) {
				sum += signal[i] * s.value
			}
		}
		if sum > best {
			best = sum
		}
	}
	return best
}

// zNormalize returns (x - mean) / popStd, or the centred series when std is zero
func zNormalize(x []float64) []float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	out := make([]float64, len(x))
	copy(out, x)
	floats.AddConst(-mean, out)
	if std > 0 {
		floats.Scale(1/std, out)
	}
	return out
}

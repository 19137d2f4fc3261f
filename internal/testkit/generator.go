package testkit

import (
	"math"
	"math/rand/v2"
)

// SignalGeneratorConfig configures synthetic series with planted pulses
type SignalGeneratorConfig struct {
	Samples    int     `json:"samples"`
	SampleRate int     `json:"sample_rate"`
	NoiseStd   float64 `json:"noise_std"`
	PulseAt    []int   `json:"pulse_at"`    // sample indices that receive a pulse
	PulseWidth int     `json:"pulse_width"` // samples on each side of the pulse centre
	Amplitude  float64 `json:"amplitude"`
	Seed       uint64  `json:"seed"`
}

// DefaultSignalConfig returns a one-second 8 kHz trace with no pulses
func DefaultSignalConfig() SignalGeneratorConfig {
	return SignalGeneratorConfig{
		Samples:    8000,
		SampleRate: 8000,
		NoiseStd:   0.05,
		PulseWidth: 2,
		Amplitude:  1.0,
		Seed:       42,
	}
}

// SignalGenerator produces deterministic noisy traces
type SignalGenerator struct {
	config SignalGeneratorConfig
	rng    *rand.Rand
}

func NewSignalGenerator(config SignalGeneratorConfig) *SignalGenerator {
	return &SignalGenerator{
		config: config,
		rng:    rand.New(rand.NewPCG(config.Seed, 0x5eed)),
	}
}

// Generate returns Gaussian noise with a triangular pulse at each PulseAt index
func (g *SignalGenerator) Generate() []float64 {
	out := make([]float64, g.config.Samples)
	for i := range out {
		out[i] = g.rng.NormFloat64() * g.config.NoiseStd
	}
	w := g.config.PulseWidth
	for _, c := range g.config.PulseAt {
		for d := -w; d <= w; d++ {
			i := c + d
			if i < 0 || i >= len(out) {
				continue
			}
			out[i] += g.config.Amplitude * (1 - math.Abs(float64(d))/float64(w+1))
		}
	}
	return out
}

// PCM16 scales a [-1, 1] trace to 16-bit integer samples, clipping outliers
func PCM16(values []float64) []int {
	out := make([]int, len(values))
	for i, v := range values {
		v = math.Max(-1, math.Min(1, v))
		out[i] = int(math.Round(v * 32767))
	}
	return out
}

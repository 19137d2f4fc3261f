package audit

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gosigma/adapters/wav"
	"gosigma/domain/core"
	"gosigma/internal/significance"
)

// WavAlignmentParams configures the WAV lattice-tick audit
type WavAlignmentParams struct {
	PrimeLimit int
	Window     int     // samples searched on each side of a tick
	Threshold  float64 // normalized amplitude that counts as a hit
}

func DefaultWavAlignmentParams() WavAlignmentParams {
	return WavAlignmentParams{PrimeLimit: 61, Window: 50, Threshold: 0.5}
}

// WavAlignment scores how many lattice ticks land near a loud sample in a
// recording. The null circularly shifts the recording by a random offset,
// which keeps its amplitude profile but breaks any alignment with the grid.
type WavAlignment struct {
	params WavAlignmentParams
}

func NewWavAlignment(params WavAlignmentParams) *WavAlignment {
	return &WavAlignment{params: params}
}

func (a *WavAlignment) Name() string { return "wav-alignment" }

func (a *WavAlignment) Description() string {
	return "share of prime*(16/pi) ms ticks with a loud sample nearby in a WAV file (--input)"
}

// Ticks converts the lattice beat times into sample indices below length
func (a *WavAlignment) Ticks(sampleRate, length int) []int {
	var ticks []int
	for _, p := range Primes(a.params.PrimeLimit) {
		beat := float64(p) * (LatticeRatio + AgencyOffset) / 1000
		if i := int(beat * float64(sampleRate)); i < length {
			ticks = append(ticks, i)
		}
	}
	return ticks
}

func (a *WavAlignment) Run(ctx context.Context, env Env) (*Outcome, error) {
	if env.Input == "" {
		return nil, core.NewConfigurationError("input", "a WAV file path is required")
	}
	if a.params.Window < 0 {
		return nil, core.NewConfigurationError("window", "must not be negative")
	}

	series, err := wav.NewReader(env.Input, env.logger()).Load(ctx)
	if err != nil {
		return nil, err
	}
	ticks := a.Ticks(series.SampleRate, len(series.Values))
	if len(ticks) == 0 {
		return nil, core.NewDataUnavailableError(env.Input,
			fmt.Errorf("recording of %d samples at %d Hz is shorter than the first lattice tick",
				len(series.Values), series.SampleRate))
	}

	magnitude := make([]float64, len(series.Values))
	for i, v := range series.Values {
		magnitude[i] = math.Abs(v)
	}
	n := len(magnitude)

	cfg := env.config()
	cfg.DatasetHash = series.Hash

	exp := significance.Experiment[int]{
		Name: a.Name(),
		Observe: func(context.Context) (int, error) {
			return 0, nil
		},
		GenerateNull: func(r *rand.Rand) (int, error) {
			return r.IntN(n), nil
		},
		Score: func(shift int) float64 {
			hits := 0
			for _, tick := range ticks {
				if a.windowPeak(magnitude, tick, shift) > a.params.Threshold {
					hits++
				}
			}
			return float64(hits) / float64(len(ticks))
		},
	}

	result, err := significance.Run(ctx, cfg, exp)
	return finish(a.Name(), series.Name, result, err)
}

// windowPeak returns the largest magnitude within ±Window of tick in the
// recording rolled right by shift, so rolled[i] = magnitude[(i-shift) mod n].
func (a *WavAlignment) windowPeak(magnitude []float64, tick, shift int) float64 {
	n := len(magnitude)
	start := max(0, tick-a.params.Window)
	end := min(n, tick+a.params.Window)

	var peak float64
	for i := start; i < end; i++ {
		j := (i - shift) % n
		if j < 0 {
			j += n
		}
		if magnitude[j] > peak {
			peak = magnitude[j]
		}
	}
	return peak
}

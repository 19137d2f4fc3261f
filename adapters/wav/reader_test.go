package wav

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigma/domain/core"
	"gosigma/internal"
	"gosigma/internal/testkit"
)

var quiet = internal.NewLogger(internal.LogLevelError)

func TestReader_NormalizesFirstChannel(t *testing.T) {
	dir := t.TempDir()
	// interleaved stereo: left carries the signal, right is louder noise
	samples := []int{1000, 30000, -2000, 30000, 500, -30000, 0, 30000}
	path := testkit.WriteWAV(t, dir, "stereo.wav", samples, 8000, 2)

	series, err := NewReader(path, quiet).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8000, series.SampleRate)
	assert.Equal(t, []float64{0.5, -1, 0.25, 0}, series.Values)
	assert.False(t, series.Hash.IsEmpty())
}

func TestReader_Mono(t *testing.T) {
	cfg := testkit.DefaultSignalConfig()
	cfg.PulseAt = []int{400}
	cfg.Samples = 1000
	path := testkit.WriteWAV(t, t.TempDir(), "mono.wav", testkit.PCM16(testkit.NewSignalGenerator(cfg).Generate()), cfg.SampleRate, 1)

	series, err := NewReader(path, quiet).Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, series.Values, 1000)
	assert.InDelta(t, 1.0, series.Values[400], 0.2)
}

func TestReader_Failures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not RIFF"), 0o644))
	silent := testkit.WriteWAV(t, dir, "silent.wav", make([]int, 64), 8000, 1)

	for name, path := range map[string]string{
		"missing": filepath.Join(dir, "nope.wav"),
		"garbage": garbage,
		"silent":  silent,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewReader(path, quiet).Load(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrDataUnavailable))
		})
	}
}

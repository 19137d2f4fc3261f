// Package wav loads PCM audio files as normalized series.
package wav

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	gowav "github.com/go-audio/wav"

	"gosigma/domain/core"
	"gosigma/internal"
	"gosigma/ports"
)

// Reader decodes a WAV file and keeps its first channel scaled to [-1, 1]
type Reader struct {
	path   string
	logger *internal.Logger
}

var _ ports.SeriesSource = (*Reader)(nil)

func NewReader(path string, logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Reader{path: path, logger: logger}
}

// Load decodes the whole file. Missing, malformed or silent audio is reported
// as core.ErrDataUnavailable.
func (r *Reader) Load(ctx context.Context) (*ports.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	f, err := os.Open(r.path)
	if err != nil {
		return nil, core.NewDataUnavailableError(r.path, err)
	}
	defer f.Close()

	decoder := gowav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, core.NewDataUnavailableError(r.path, fmt.Errorf("not a valid WAV file"))
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, core.NewDataUnavailableError(r.path, fmt.Errorf("decode PCM: %w", err))
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels < 1 {
		channels = 1
	}

	values := firstChannel(buf.Data, channels)
	if len(values) == 0 {
		return nil, core.NewDataUnavailableError(r.path, fmt.Errorf("no samples"))
	}
	if err := normalize(values); err != nil {
		return nil, core.NewDataUnavailableError(r.path, err)
	}

	r.logger.Debug("[WAV] decoded %s: %d samples at %d Hz, %d channel(s) in %.2fms",
		r.path, len(values), decoder.SampleRate, channels, float64(time.Since(startTime).Nanoseconds())/1e6)

	return &ports.Series{
		Name:       r.path,
		Values:     values,
		SampleRate: int(decoder.SampleRate),
		Hash:       core.HashSeries(values),
	}, nil
}

// firstChannel de-interleaves channel 0
func firstChannel(data []int, channels int) []float64 {
	out := make([]float64, 0, len(data)/channels)
	for i := 0; i < len(data); i += channels {
		out = append(out, float64(data[i]))
	}
	return out
}

// normalize divides by the peak absolute amplitude
func normalize(values []float64) error {
	var peak float64
	for _, v := range values {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak == 0 {
		return fmt.Errorf("audio is silent")
	}
	for i := range values {
		values[i] /= peak
	}
	return nil
}

package catalog

import (
	"context"

	"gosigma/internal"
	"gosigma/internal/prompt"
	"gosigma/ports"
)

// Source tells where a resolved catalog came from
type Source string

const (
	SourceLive   Source = "live"
	SourceCanned Source = "canned"
)

// Resolution is the catalog an audit will use
type Resolution struct {
	Signals []float64
	Source  Source
	Reason  string // why the canned catalog was used, empty for live data
}

// CannedSignals is the fixed fallback catalog: four phase-locked families
// (216.8, 55.5, 85.7 and 448.7 ms) plus a repeating block of unlocked periods.
func CannedSignals() []float64 {
	families := []struct {
		period float64
		count  int
	}{
		{216.8, 120},
		{55.5, 100},
		{85.7, 140},
		{448.7, 101},
	}
	noise := []float64{112.0, 33.4, 99.1, 150.2, 210.5, 44.4, 12.3}

	var signals []float64
	for _, f := range families {
		for i := 0; i < f.count; i++ {
			signals = append(signals, f.period)
		}
	}
	for i := 0; i < 11; i++ {
		signals = append(signals, noise...)
	}
	return signals
}

// Resolve asks the gate whether to go online and falls back to the canned
// catalog on a "no", a timeout, or any fetch failure. It never fails.
func Resolve(ctx context.Context, gate prompt.Gate, fetcher ports.CatalogFetcher, logger *internal.Logger) Resolution {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	canned := func(reason string) Resolution {
		return Resolution{Signals: CannedSignals(), Source: SourceCanned, Reason: reason}
	}

	if gate == nil || fetcher == nil {
		return canned("live fetch not configured")
	}

	answer := gate.Confirm(ctx, "Fetch live catalog data from the internet?")
	if !answer.Yes {
		if answer.TimedOut {
			return canned("prompt timed out")
		}
		return canned("live fetch declined")
	}

	signals, err := fetcher.Fetch(ctx)
	if err != nil {
		logger.Warn("[Catalog] live fetch failed, falling back to canned catalog: %v", err)
		return canned(err.Error())
	}
	return Resolution{Signals: signals, Source: SourceLive}
}

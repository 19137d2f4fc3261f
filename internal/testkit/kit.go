// Package testkit provides fixtures and stub adapters for tests.
package testkit

import (
	"context"
	"encoding/csv"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/xuri/excelize/v2"

	"gosigma/ports"
)

// FixedRNG implements ports.RNGPort with one stream per (block, seed) pair
// and ignores names. It makes generator order visible in tests.
type FixedRNG struct {
	Calls int
}

var _ ports.RNGPort = (*FixedRNG)(nil)

func (r *FixedRNG) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	r.Calls++
	return rand.New(rand.NewPCG(seed, 0)), nil
}

func (r *FixedRNG) Stream(ctx context.Context, name string, block int, seed uint64) (*rand.Rand, error) {
	r.Calls++
	return rand.New(rand.NewPCG(seed, uint64(block))), nil
}

// ValidateSeed is a stub that accepts every seed
func (r *FixedRNG) ValidateSeed(ctx context.Context, name string, seed uint64, expected []float64) error {
	return nil
}

// WriteWAV writes 16-bit PCM samples to dir/name and returns the path.
// Samples are interleaved when channels > 1.
func WriteWAV(tb testing.TB, dir, name string, samples []int, sampleRate, channels int) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := gowav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		tb.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		tb.Fatalf("close wav encoder: %v", err)
	}
	return path
}

// WriteSeriesXLSX writes a single-column workbook with header on Sheet1
func WriteSeriesXLSX(tb testing.TB, dir, name, header string, values []float64) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue("Sheet1", "A1", header); err != nil {
		tb.Fatalf("write header: %v", err)
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			tb.Fatalf("write cell %s: %v", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("save workbook: %v", err)
	}
	return path
}

// WriteCSV writes rows verbatim and returns the path
func WriteCSV(tb testing.TB, dir, name string, rows [][]string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		tb.Fatalf("write csv: %v", err)
	}
	return path
}

// SeriesRows formats values as a one-column CSV body under header
func SeriesRows(header string, values []float64) [][]string {
	rows := [][]string{{header}}
	for _, v := range values {
		rows = append(rows, []string{strconv.FormatFloat(v, 'g', -1, 64)})
	}
	return rows
}

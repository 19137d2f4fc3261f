package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gosigma/domain/core"
	"gosigma/internal"
	"gosigma/ports"
)

// DefaultSheet is the worksheet read from workbooks
const DefaultSheet = "Sheet1"

// SeriesReader loads one numeric column from an Excel or CSV file
type SeriesReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	column   string
	sheet    string
	logger   *internal.Logger
}

var _ ports.SeriesSource = (*SeriesReader)(nil)

// NewSeriesReader creates a reader for the named column. An empty column
// selects the first column of the header row.
func NewSeriesReader(filePath, column string, logger *internal.Logger) *SeriesReader {
	fileType := "xlsx"
	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SeriesReader{
		filePath: filePath,
		fileType: fileType,
		column:   column,
		sheet:    DefaultSheet,
		logger:   logger,
	}
}

// Load reads the file and returns the selected column as a series
func (r *SeriesReader) Load(ctx context.Context) (*ports.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("[SeriesReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, core.NewDataUnavailableError(r.filePath, err)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, core.NewDataUnavailableError(r.filePath, err)
	}

	name, values, err := r.extractColumn(rows)
	if err != nil {
		return nil, core.NewDataUnavailableError(r.filePath, err)
	}

	return &ports.Series{
		Name:   name,
		Values: values,
		Hash:   core.HashSeries(values),
	}, nil
}

func (r *SeriesReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	r.logger.Debug("[SeriesReader] %s read in %.2fms (%d rows)",
		r.sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *SeriesReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// extractColumn finds the column in the header row and parses every data cell.
// Blank cells are skipped; anything else that is not a finite number is an error.
func (r *SeriesReader) extractColumn(rows [][]string) (string, []float64, error) {
	if len(rows) < 2 {
		return "", nil, fmt.Errorf("file must have at least a header row and one data row")
	}

	header := rows[0]
	idx := 0
	if r.column != "" {
		idx = -1
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(r.column)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", nil, fmt.Errorf("column %q not found in header", r.column)
		}
	}
	if idx >= len(header) {
		return "", nil, fmt.Errorf("header row is empty")
	}
	name := strings.TrimSpace(header[idx])

	values := make([]float64, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return "", nil, fmt.Errorf("row %d: %q is not a finite number", rowNum+2, cell)
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return "", nil, fmt.Errorf("column %q has no numeric values", name)
	}
	return name, values, nil
}

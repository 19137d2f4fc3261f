package excel

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"gosigma/domain/stats"
	"gosigma/domain/verdict"
)

const (
	summarySheet = "Summary"
	nullSheet    = "Null"
)

// ExportResult writes a run to an xlsx workbook: a Summary sheet of key/value
// rows and a Null sheet holding every null score in trial order.
func ExportResult(path string, result *stats.TestResult, label verdict.Label) error {
	if result == nil {
		return fmt.Errorf("no result to export")
	}
	if filepath.Ext(path) == "" {
		path += ".xlsx"
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(DefaultSheet, summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Field", "Value"},
		{"Run ID", result.RunID.String()},
		{"Experiment", result.Experiment},
		{"Trials", result.Trials},
		{"Seed", fmt.Sprintf("%d", result.Seed)},
		{"Direction", string(result.Direction)},
		{"Observed", result.Observed},
		{"Null mean", result.NullMean},
		{"Null std", result.NullStd},
		{"Sigma", sigmaCell(result)},
		{"P-value", result.PValue},
		{"Exceedances", result.Exceedances},
		{"Gaussian P", result.GaussianP},
		{"Null median", result.Null.Median},
		{"Null p95", result.Null.Percentile95},
		{"Null p99", result.Null.Percentile99},
		{"Degenerate", result.Degenerate},
		{"Label", string(label)},
		{"Fingerprint", result.Fingerprint.String()},
		{"Completed", result.CompletedAt.String()},
	}
	if result.Tolerance > 0 {
		rows = append(rows,
			[]interface{}{"Tolerance", result.Tolerance},
			[]interface{}{"Tolerance matches", result.ToleranceMatches})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	if result.Distribution != nil {
		if _, err := f.NewSheet(nullSheet); err != nil {
			return fmt.Errorf("create null sheet: %w", err)
		}
		if err := f.SetSheetRow(nullSheet, "A1", &[]interface{}{"Trial", "Score"}); err != nil {
			return err
		}
		for i, v := range result.Distribution.Values() {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(nullSheet, cell, &[]interface{}{i + 1, v}); err != nil {
				return fmt.Errorf("write null row %d: %w", i+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sigmaCell keeps NaN and Inf out of numeric cells
func sigmaCell(result *stats.TestResult) interface{} {
	switch {
	case math.IsNaN(result.Sigma):
		return "undefined"
	case math.IsInf(result.Sigma, 1):
		return "+Inf"
	case math.IsInf(result.Sigma, -1):
		return "-Inf"
	}
	return result.Sigma
}

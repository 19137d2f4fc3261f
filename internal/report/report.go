// Package report renders significance results as text, markdown or HTML.
package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"gosigma/domain/stats"
	"gosigma/domain/verdict"
	"gosigma/internal/profiling"
)

// Format selects the rendering
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// DefaultBins is the histogram resolution used when none is configured
const DefaultBins = 20

// DiscoveryCutoff is the sigma a run must clear, with no null trial reaching
// the observation, to be reported as significant
const DiscoveryCutoff = 5.0

// ParseFormat accepts text, markdown (md) and html
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, markdown or html)", s)
}

// Extension is the file suffix for a format
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// Report is everything a renderer needs
type Report struct {
	Result *stats.TestResult
	Label  verdict.Label
	Source string
	Bins   int
}

// Write renders r in the given format
func Write(w io.Writer, format Format, r Report) error {
	if r.Result == nil {
		return fmt.Errorf("no result to report")
	}
	if r.Bins <= 0 {
		r.Bins = DefaultBins
	}

	switch format {
	case FormatMarkdown:
		_, err := w.Write(Markdown(r))
		return err
	case FormatHTML:
		_, err := w.Write(HTML(r))
		return err
	case FormatText, "":
		if err := WriteTable(w, r.Result, r.Label); err != nil {
			return err
		}
		if r.Source != "" {
			fmt.Fprintf(w, "Source: %s\n", r.Source)
		}
		if r.Result.Distribution != nil {
			fmt.Fprintln(w)
			return WriteHistogram(w, r.Result.Distribution, r.Bins)
		}
		return nil
	}
	return fmt.Errorf("unknown report format %q", format)
}

// rows is the shared field list of every rendering
func rows(result *stats.TestResult, label verdict.Label) [][2]string {
	out := [][2]string{
		{"Experiment", result.Experiment},
		{"Run", result.RunID.String()},
		{"Trials", fmt.Sprintf("%d", result.Trials)},
		{"Seed", fmt.Sprintf("%d", result.Seed)},
		{"Direction", string(result.Direction)},
		{"Observed", formatFloat(result.Observed)},
		{"Null mean", formatFloat(result.NullMean)},
		{"Null std", formatFloat(result.NullStd)},
		{"Null p95 / p99", formatFloat(result.Null.Percentile95) + " / " + formatFloat(result.Null.Percentile99)},
		{"Sigma", formatSigma(result.Sigma)},
		{"Empirical p", fmt.Sprintf("%s (%d/%d)", formatFloat(result.PValue), result.Exceedances, result.Trials)},
		{"Gaussian p", formatFloat(result.GaussianP)},
		{fmt.Sprintf("Above %g sigma, no matches", DiscoveryCutoff), yesNo(result.Significant(DiscoveryCutoff))},
	}
	if result.Exceedances == 0 && result.Trials > 0 {
		out = append(out, [2]string{"p bound", fmt.Sprintf("< 1/%d", result.Trials)})
	}
	if result.Tolerance > 0 {
		out = append(out, [2]string{"Tolerance matches",
			fmt.Sprintf("%d within ±%s", result.ToleranceMatches, formatFloat(result.Tolerance))})
	}
	if result.Degenerate {
		out = append(out, [2]string{"Degenerate", "null std is zero"})
	}
	if result.Distribution != nil {
		if shape, err := profiling.AnalyzeNull(result.Distribution.Values()); err == nil {
			out = append(out, [2]string{"Null shape", fmt.Sprintf("skew %.3f, excess kurtosis %.3f, Jarque-Bera p %.3g",
				shape.Skewness, shape.ExcessKurtosis, shape.PValue)})
			if !shape.Gaussian {
				out = append(out, [2]string{"Caveat", "null is not normal; read sigma alongside the empirical p"})
			}
		}
	}
	out = append(out,
		[2]string{"Label", string(label)},
		[2]string{"Fingerprint", result.Fingerprint.Short()},
		[2]string{"Duration", result.Duration.String()},
	)
	return out
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// WriteTable writes the result as aligned key/value rows
func WriteTable(w io.Writer, result *stats.TestResult, label verdict.Label) error {
	if result == nil {
		return fmt.Errorf("no result to report")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, row := range rows(result, label) {
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

func formatSigma(v float64) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	return fmt.Sprintf("%.3f", v)
}

// textBlock renders a histogram into a string for embedding
func textBlock(dist *stats.NullDistribution, bins int) string {
	var buf bytes.Buffer
	if err := WriteHistogram(&buf, dist, bins); err != nil {
		return err.Error()
	}
	return buf.String()
}

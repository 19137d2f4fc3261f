package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigma/domain/core"
	"gosigma/domain/stats"
	"gosigma/domain/verdict"
)

func fixture(values ...float64) *stats.TestResult {
	dist := stats.NewNullDistribution(len(values))
	for _, v := range values {
		dist.Append(v)
	}
	summary, _ := dist.Summary()
	return &stats.TestResult{
		RunID:        core.NewRunID(),
		Experiment:   "lattice-noise",
		Trials:       len(values),
		Seed:         42,
		Direction:    stats.DirectionGreater,
		Observed:     14,
		NullMean:     summary.Mean,
		NullStd:      summary.StdDev,
		Sigma:        4.2,
		Null:         summary,
		Distribution: dist,
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "md": FormatMarkdown, "html": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.Error(t, err)
	assert.Equal(t, ".md", FormatMarkdown.Extension())
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, fixture(1, 2, 3), verdict.LabelProof))

	out := buf.String()
	assert.Contains(t, out, "Experiment:")
	assert.Contains(t, out, "lattice-noise")
	assert.Contains(t, out, "4.200")
	assert.Contains(t, out, "PROOF")
	assert.Contains(t, out, "< 1/3")
}

func TestRows_Significance(t *testing.T) {
	var md bytes.Buffer
	require.NoError(t, Write(&md, FormatMarkdown, Report{Result: fixture(1, 2, 3), Label: verdict.LabelProof}))
	assert.Contains(t, md.String(), "| Above 5 sigma, no matches | no |")

	r := fixture(1, 2, 3)
	r.Sigma = 6.1
	md.Reset()
	require.NoError(t, Write(&md, FormatMarkdown, Report{Result: r, Label: verdict.LabelProof}))
	assert.Contains(t, md.String(), "| Above 5 sigma, no matches | yes |")

	r.Exceedances = 1
	md.Reset()
	require.NoError(t, Write(&md, FormatMarkdown, Report{Result: r, Label: verdict.LabelProof}))
	assert.Contains(t, md.String(), "| Above 5 sigma, no matches | no |")
}

func TestWriteTable_UndefinedSigma(t *testing.T) {
	r := fixture(1, 1)
	r.Sigma = math.NaN()
	r.Degenerate = true

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, r, verdict.LabelInconclusive))
	assert.Contains(t, buf.String(), "undefined")
	assert.Contains(t, buf.String(), "null std is zero")
}

func TestWriteHistogram(t *testing.T) {
	dist := stats.NewNullDistribution(0)
	for _, v := range []float64{0, 0, 0, 0, 1, 2, 3, 4} {
		dist.Append(v)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, dist, 4))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], " 4"))
	assert.Contains(t, lines[0], strings.Repeat("#", barWidth))
	assert.True(t, strings.HasSuffix(lines[3], " 2")) // 3 and the maximum 4
}

func TestWriteHistogram_Constant(t *testing.T) {
	dist := stats.NewNullDistribution(0)
	dist.Append(7)
	dist.Append(7)

	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, dist, 10))
	assert.Equal(t, "all 2 null scores equal 7\n", buf.String())

	assert.Error(t, WriteHistogram(&buf, stats.NewNullDistribution(0), 10))
}

func TestWrite_Formats(t *testing.T) {
	r := Report{Result: fixture(1, 2, 3, 4), Label: verdict.LabelProof, Source: "canned (prompt timed out)", Bins: 2}

	var text bytes.Buffer
	require.NoError(t, Write(&text, FormatText, r))
	assert.Contains(t, text.String(), "Source: canned")
	assert.Contains(t, text.String(), "#")

	var md bytes.Buffer
	require.NoError(t, Write(&md, FormatMarkdown, r))
	assert.True(t, strings.HasPrefix(md.String(), "# lattice-noise: PROOF"))
	assert.Contains(t, md.String(), "| Sigma | 4.200 |")

	var page bytes.Buffer
	require.NoError(t, Write(&page, FormatHTML, r))
	assert.Contains(t, page.String(), "<table>")
	assert.Contains(t, page.String(), "<title>lattice-noise significance report</title>")

	assert.Error(t, Write(&page, FormatText, Report{}))
	assert.Error(t, Write(&page, Format("pdf"), r))
}

func TestWriteTable_FlagsNonNormalNull(t *testing.T) {
	values := make([]float64, 0, 200)
	for i := 0; i < 190; i++ {
		values = append(values, float64(i%5))
	}
	for i := 0; i < 10; i++ {
		values = append(values, 1000)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, fixture(values...), verdict.LabelHint))
	assert.Contains(t, buf.String(), "Null shape:")
	assert.Contains(t, buf.String(), "Caveat:")
}

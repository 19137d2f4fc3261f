package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosigma/domain/stats"
	"gosigma/domain/verdict"
	"gosigma/internal"
	"gosigma/internal/errors"
	"gosigma/internal/report"
	"gosigma/internal/significance"
)

var envKeys = []string{
	"SIGMA_TRIALS", "SIGMA_SEED", "SIGMA_WORKERS", "SIGMA_BLOCK_SIZE", "SIGMA_DIRECTION",
	"SIGMA_DEGENERATE", "SIGMA_THRESHOLDS", "PROMPT_TIMEOUT", "PROMPT_DEFAULT",
	"CATALOG_URL", "CATALOG_TIMEOUT", "CATALOG_PATH", "CATALOG_SAVE_PATH",
	"REPORT_FORMAT", "REPORT_DIR", "REPORT_BINS", "REPORT_EXPORT_XLSX", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Tester.Trials)
	assert.Equal(t, uint64(42), cfg.Tester.Seed)
	assert.Equal(t, 1, cfg.Tester.Workers)
	assert.Equal(t, significance.DefaultBlockSize, cfg.Tester.BlockSize)
	assert.Equal(t, stats.DirectionGreater, cfg.Tester.Direction)
	assert.Equal(t, significance.DegenerateFail, cfg.Tester.Degenerate)
	assert.Equal(t, verdict.LabelProof, cfg.Tester.Thresholds.Label(4.2))

	assert.Equal(t, 15*time.Second, cfg.Prompt.Timeout)
	assert.False(t, cfg.Prompt.Default)

	assert.Equal(t, "https://www.chime-frb.ca/api/events", cfg.Catalog.URL)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "#.periodic_ms", cfg.Catalog.Path)

	assert.Equal(t, report.FormatText, cfg.Report.Format)
	assert.Equal(t, report.DefaultBins, cfg.Report.Bins)
	assert.Equal(t, internal.LogLevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGMA_TRIALS", "500")
	t.Setenv("SIGMA_SEED", "20260101")
	t.Setenv("SIGMA_WORKERS", "8")
	t.Setenv("SIGMA_DIRECTION", "two-sided")
	t.Setenv("SIGMA_DEGENERATE", "zero")
	t.Setenv("SIGMA_THRESHOLDS", "2:PROOF,1:HINT")
	t.Setenv("PROMPT_TIMEOUT", "250ms")
	t.Setenv("PROMPT_DEFAULT", "true")
	t.Setenv("REPORT_FORMAT", "markdown")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Tester.Trials)
	assert.Equal(t, uint64(20260101), cfg.Tester.Seed)
	assert.Equal(t, 8, cfg.Tester.Workers)
	assert.Equal(t, stats.DirectionTwoSided, cfg.Tester.Direction)
	assert.Equal(t, significance.DegenerateZero, cfg.Tester.Degenerate)
	assert.Equal(t, verdict.LabelProof, cfg.Tester.Thresholds.Label(4.2))
	assert.Equal(t, 250*time.Millisecond, cfg.Prompt.Timeout)
	assert.True(t, cfg.Prompt.Default)
	assert.Equal(t, report.FormatMarkdown, cfg.Report.Format)
	assert.Equal(t, internal.LogLevelDebug, cfg.LogLevel)

	sc := cfg.Significance(nil)
	assert.Equal(t, 500, sc.Trials)
	assert.Equal(t, 8, sc.Workers)
	assert.Equal(t, stats.DirectionTwoSided, sc.Direction)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SIGMA_TRIALS", "many"},
		{"SIGMA_TRIALS", "0"},
		{"SIGMA_SEED", "-1"},
		{"SIGMA_WORKERS", "0"},
		{"SIGMA_DIRECTION", "sideways"},
		{"SIGMA_DEGENERATE", "ignore"},
		{"SIGMA_THRESHOLDS", "1:HINT,3:PROOF"},
		{"PROMPT_TIMEOUT", "soon"},
		{"PROMPT_DEFAULT", "maybe"},
		{"REPORT_FORMAT", "pdf"},
		{"REPORT_BINS", "0"},
		{"LOG_LEVEL", "LOUD"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

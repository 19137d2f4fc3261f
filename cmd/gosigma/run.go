package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gosigma/adapters/catalog"
	"gosigma/adapters/excel"
	"gosigma/domain/core"
	"gosigma/domain/stats"
	"gosigma/domain/verdict"
	"gosigma/internal"
	"gosigma/internal/audit"
	"gosigma/internal/config"
	"gosigma/internal/errors"
	"gosigma/internal/prompt"
	"gosigma/internal/report"
	"gosigma/internal/significance"
)

type runOptions struct {
	trials     int
	seed       uint64
	workers    int
	direction  string
	degenerate string
	input      string
	column     string
	live       string
	thresholds string
	format     string
	export     string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [audit]",
		Short: "Run one audit and print its significance report",
		Long: `Run an audit against its Monte Carlo null distribution.

Defaults come from SIGMA_*, PROMPT_*, CATALOG_* and REPORT_* environment
variables (a .env file is loaded if present); flags override them.

Example: gosigma run prime-lock --trials 20000 --seed 7 --workers 8 --live no`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.trials, "trials", 0, "Number of null trials (SIGMA_TRIALS)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (SIGMA_SEED)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Parallel workers (SIGMA_WORKERS)")
	cmd.Flags().StringVar(&opts.direction, "direction", "", "greater, less or two-sided (SIGMA_DIRECTION)")
	cmd.Flags().StringVar(&opts.degenerate, "degenerate", "", "fail, zero or infinite (SIGMA_DEGENERATE)")
	cmd.Flags().StringVar(&opts.input, "input", "", "Input file for audits that read data (.wav, .xlsx, .csv)")
	cmd.Flags().StringVar(&opts.column, "column", "", "Spreadsheet column to read (default: first)")
	cmd.Flags().StringVar(&opts.live, "live", "ask", "Fetch the live catalog: ask, yes or no")
	cmd.Flags().StringVar(&opts.thresholds, "thresholds", "", `Label table, e.g. "5:DISCOVERY,3:PROOF,1:HINT" (SIGMA_THRESHOLDS)`)
	cmd.Flags().StringVar(&opts.format, "format", "", "text, markdown or html (REPORT_FORMAT)")
	cmd.Flags().StringVar(&opts.export, "export", "", "Also write the run to this xlsx file (REPORT_EXPORT_XLSX)")

	return cmd
}

func runAudit(cmd *cobra.Command, name string, opts runOptions) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cmd, cfg, opts); err != nil {
		return err
	}
	logger := internal.NewLogger(cfg.LogLevel)

	a, err := audit.Default().Get(name)
	if err != nil {
		return err
	}

	gate, err := newGate(opts.live, cfg.Prompt)
	if err != nil {
		return err
	}

	sc := cfg.Significance(logger)
	sc.CodeVersion = version
	env := audit.Env{
		Config: sc,
		Input:  opts.input,
		Column: opts.column,
		Gate:   gate,
		Fetcher: catalog.NewHTTPFetcher(catalog.FetcherConfig{
			URL:      cfg.Catalog.URL,
			Path:     cfg.Catalog.Path,
			Timeout:  cfg.Catalog.Timeout,
			SavePath: cfg.Catalog.SavePath,
		}, logger),
		Logger: logger,
	}

	outcome, runErr := a.Run(ctx, env)
	if outcome == nil {
		return runErr
	}

	label := verdict.Classify(outcome.Result, cfg.Tester.Thresholds)
	if err := writeReport(ctx, cmd.OutOrStdout(), cfg.Report, report.Report{
		Result: outcome.Result,
		Label:  label,
		Source: outcome.Source,
		Bins:   cfg.Report.Bins,
	}, logger); err != nil {
		return err
	}

	if cfg.Report.ExportXLSX != "" {
		if err := excel.ExportResult(cfg.Report.ExportXLSX, outcome.Result, label); err != nil {
			return errors.Wrap(err, "export workbook")
		}
		logger.Info("[CLI] workbook written to %s", cfg.Report.ExportXLSX)
	}

	// a degenerate run still prints its report before failing
	return runErr
}

// applyRunFlags lets explicitly set flags override the environment
func applyRunFlags(cmd *cobra.Command, cfg *config.Config, opts runOptions) error {
	flags := cmd.Flags()
	if flags.Changed("trials") {
		if opts.trials <= 0 {
			return errors.ConfigInvalid(fmt.Sprintf("--trials must be a positive integer, got %d", opts.trials))
		}
		cfg.Tester.Trials = opts.trials
	}
	if flags.Changed("seed") {
		cfg.Tester.Seed = opts.seed
	}
	if flags.Changed("workers") {
		if opts.workers < 1 {
			return errors.ConfigInvalid("--workers must be at least 1")
		}
		cfg.Tester.Workers = opts.workers
	}
	if flags.Changed("direction") {
		d, err := stats.ParseDirection(opts.direction)
		if err != nil {
			return errors.ConfigInvalid(err.Error())
		}
		cfg.Tester.Direction = d
	}
	if flags.Changed("degenerate") {
		p, err := significance.ParseDegeneratePolicy(opts.degenerate)
		if err != nil {
			return errors.ConfigInvalid(err.Error())
		}
		cfg.Tester.Degenerate = p
	}
	if flags.Changed("thresholds") {
		table, err := verdict.ParseTable(opts.thresholds)
		if err != nil {
			return err
		}
		cfg.Tester.Thresholds = table
	}
	if flags.Changed("format") {
		f, err := report.ParseFormat(opts.format)
		if err != nil {
			return errors.ConfigInvalid(err.Error())
		}
		cfg.Report.Format = f
	}
	if flags.Changed("export") {
		cfg.Report.ExportXLSX = opts.export
	}
	return nil
}

func newGate(live string, pc config.PromptConfig) (prompt.Gate, error) {
	switch strings.ToLower(live) {
	case "ask", "":
		return &prompt.StreamGate{In: os.Stdin, Out: os.Stderr, Timeout: pc.Timeout, Default: pc.Default}, nil
	case "yes", "y", "true":
		return prompt.FixedGate(true), nil
	case "no", "n", "false":
		return prompt.FixedGate(false), nil
	}
	return nil, errors.ConfigInvalid(fmt.Sprintf("--live must be ask, yes or no, got %q", live))
}

// writeReport prints to stdout, or to REPORT_DIR when one is configured
func writeReport(ctx context.Context, stdout io.Writer, rc config.ReportConfig, r report.Report, logger *internal.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rc.Dir == "" {
		return report.Write(stdout, rc.Format, r)
	}

	if err := os.MkdirAll(rc.Dir, 0o755); err != nil {
		return core.NewDataUnavailableError(rc.Dir, err)
	}
	path := filepath.Join(rc.Dir, fmt.Sprintf("%s-%s%s", r.Result.Experiment, r.Result.Fingerprint.Short(), rc.Format.Extension()))
	f, err := os.Create(path)
	if err != nil {
		return core.NewDataUnavailableError(path, err)
	}
	defer f.Close()

	if err := report.Write(f, rc.Format, r); err != nil {
		return err
	}
	logger.Info("[CLI] report written to %s", path)
	fmt.Fprintf(stdout, "%s: %s (%s)\n", r.Result.Experiment, r.Label, path)
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gosigma/domain/stats"
	"gosigma/domain/verdict"
	"gosigma/internal"
	"gosigma/internal/errors"
	"gosigma/internal/prompt"
	"gosigma/internal/report"
	"gosigma/internal/significance"
)

// Config represents the complete application configuration
type Config struct {
	Tester   TesterConfig
	Prompt   PromptConfig
	Catalog  CatalogConfig
	Report   ReportConfig
	LogLevel internal.LogLevel
}

// TesterConfig holds Monte Carlo run settings
type TesterConfig struct {
	Trials     int
	Seed       uint64
	Workers    int
	BlockSize  int
	Direction  stats.Direction
	Degenerate significance.DegeneratePolicy
	Thresholds *verdict.Table
}

// PromptConfig holds the live-fetch question settings
type PromptConfig struct {
	Timeout time.Duration
	Default bool
}

// CatalogConfig holds remote catalog settings
type CatalogConfig struct {
	URL      string
	Timeout  time.Duration
	Path     string
	SavePath string
}

// ReportConfig holds output settings
type ReportConfig struct {
	Format     report.Format
	Dir        string
	Bins       int
	ExportXLSX string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	testerConfig, err := loadTesterConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tester configuration")
	}
	config.Tester = *testerConfig

	promptConfig, err := loadPromptConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load prompt configuration")
	}
	config.Prompt = *promptConfig

	catalogConfig, err := loadCatalogConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog configuration")
	}
	config.Catalog = *catalogConfig

	reportConfig, err := loadReportConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load report configuration")
	}
	config.Report = *reportConfig

	level, err := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	config.LogLevel = level

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Significance builds a tester config from the loaded settings
func (c *Config) Significance(logger *internal.Logger) significance.Config {
	return significance.Config{
		Trials:     c.Tester.Trials,
		Seed:       c.Tester.Seed,
		Workers:    c.Tester.Workers,
		BlockSize:  c.Tester.BlockSize,
		Direction:  c.Tester.Direction,
		Degenerate: c.Tester.Degenerate,
		Logger:     logger,
	}
}

func loadTesterConfig() (*TesterConfig, error) {
	trials, err := getEnvIntOrDefault("SIGMA_TRIALS", 10000)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvUintOrDefault("SIGMA_SEED", 42)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvIntOrDefault("SIGMA_WORKERS", 1)
	if err != nil {
		return nil, err
	}
	blockSize, err := getEnvIntOrDefault("SIGMA_BLOCK_SIZE", significance.DefaultBlockSize)
	if err != nil {
		return nil, err
	}

	direction, err := stats.ParseDirection(getEnvOrDefault("SIGMA_DIRECTION", string(stats.DirectionGreater)))
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("SIGMA_DIRECTION: %v", err))
	}
	degenerate, err := significance.ParseDegeneratePolicy(getEnvOrDefault("SIGMA_DEGENERATE", string(significance.DegenerateFail)))
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("SIGMA_DEGENERATE: %v", err))
	}

	thresholds := verdict.DefaultTable()
	if value := os.Getenv("SIGMA_THRESHOLDS"); value != "" {
		thresholds, err = verdict.ParseTable(value)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("SIGMA_THRESHOLDS: %v", err))
		}
	}

	return &TesterConfig{
		Trials:     trials,
		Seed:       seed,
		Workers:    workers,
		BlockSize:  blockSize,
		Direction:  direction,
		Degenerate: degenerate,
		Thresholds: thresholds,
	}, nil
}

func loadPromptConfig() (*PromptConfig, error) {
	timeout, err := getEnvDurationOrDefault("PROMPT_TIMEOUT", prompt.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	def, err := getEnvBoolOrDefault("PROMPT_DEFAULT", false)
	if err != nil {
		return nil, err
	}
	return &PromptConfig{Timeout: timeout, Default: def}, nil
}

func loadCatalogConfig() (*CatalogConfig, error) {
	timeout, err := getEnvDurationOrDefault("CATALOG_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	return &CatalogConfig{
		URL:      getEnvOrDefault("CATALOG_URL", "https://www.chime-frb.ca/api/events"),
		Timeout:  timeout,
		Path:     getEnvOrDefault("CATALOG_PATH", "#.periodic_ms"),
		SavePath: getEnvOrDefault("CATALOG_SAVE_PATH", ""),
	}, nil
}

func loadReportConfig() (*ReportConfig, error) {
	format, err := report.ParseFormat(getEnvOrDefault("REPORT_FORMAT", string(report.FormatText)))
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("REPORT_FORMAT: %v", err))
	}
	bins, err := getEnvIntOrDefault("REPORT_BINS", report.DefaultBins)
	if err != nil {
		return nil, err
	}
	return &ReportConfig{
		Format:     format,
		Dir:        getEnvOrDefault("REPORT_DIR", ""),
		Bins:       bins,
		ExportXLSX: getEnvOrDefault("REPORT_EXPORT_XLSX", ""),
	}, nil
}

func validateConfig(config *Config) error {
	if config.Tester.Trials <= 0 {
		return errors.ConfigInvalid("SIGMA_TRIALS must be a positive integer")
	}
	if config.Tester.Workers < 1 {
		return errors.ConfigInvalid("SIGMA_WORKERS must be at least 1")
	}
	if config.Tester.BlockSize <= 0 {
		return errors.ConfigInvalid("SIGMA_BLOCK_SIZE must be positive")
	}
	if config.Prompt.Timeout <= 0 {
		return errors.ConfigInvalid("PROMPT_TIMEOUT must be positive")
	}
	if config.Catalog.Timeout <= 0 {
		return errors.ConfigInvalid("CATALOG_TIMEOUT must be positive")
	}
	if config.Report.Bins < 1 {
		return errors.ConfigInvalid("REPORT_BINS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing. Unset or empty values
// take the default; set values that do not parse are configuration errors.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not an integer", key, value))
	}
	return intValue, nil
}

func getEnvUintOrDefault(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	uintValue, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not an unsigned integer", key, value))
	}
	return uintValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a boolean", key, value))
	}
	return boolValue, nil
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.ConfigInvalid(fmt.Sprintf("%s: %q is not a duration", key, value))
	}
	return duration, nil
}

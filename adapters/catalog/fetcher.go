package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/tidwall/gjson"

	"gosigma/domain/core"
	"gosigma/internal"
	"gosigma/ports"
)

// FetcherConfig holds settings for the remote catalog endpoint
type FetcherConfig struct {
	URL       string
	Path      string // gjson path selecting the numeric values, e.g. "#.periodic_ms"
	Timeout   time.Duration
	UserAgent string
	SavePath  string // optional copy of the raw response body
	MaxBytes  int64
}

// DefaultFetcherConfig returns the CHIME FRB event endpoint settings
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		URL:       "https://www.chime-frb.ca/api/events",
		Path:      "#.periodic_ms",
		Timeout:   10 * time.Second,
		UserAgent: "Mozilla/5.0 (compatible; gosigma)",
		MaxBytes:  32 << 20,
	}
}

// HTTPFetcher pulls a JSON catalog over HTTP and extracts one numeric field
type HTTPFetcher struct {
	config     FetcherConfig
	httpClient *http.Client
	logger     *internal.Logger
}

var _ ports.CatalogFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates a fetcher; zero fields fall back to DefaultFetcherConfig
func NewHTTPFetcher(config FetcherConfig, logger *internal.Logger) *HTTPFetcher {
	defaults := DefaultFetcherConfig()
	if config.URL == "" {
		config.URL = defaults.URL
	}
	if config.Path == "" {
		config.Path = defaults.Path
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = defaults.MaxBytes
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &HTTPFetcher{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

// Fetch retrieves the catalog and returns every numeric value under the configured path
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]float64, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", core.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: HTTP request failed: %v", core.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", core.ErrFetchFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d", core.ErrFetchFailed, resp.StatusCode)
	}

	if f.config.SavePath != "" {
		if err := os.WriteFile(f.config.SavePath, body, 0o644); err != nil {
			f.logger.Warn("[Catalog] could not save raw response to %s: %v", f.config.SavePath, err)
		} else {
			f.logger.Info("[Catalog] raw response saved to %s", f.config.SavePath)
		}
	}

	values, err := extractValues(body, f.config.Path)
	if err != nil {
		return nil, err
	}

	f.logger.Info("[Catalog] fetched %d values from %s in %.2fms",
		len(values), f.config.URL, float64(time.Since(startTime).Nanoseconds())/1e6)
	return values, nil
}

// extractValues pulls numbers out of arbitrary JSON; non-numeric entries are skipped
func extractValues(body []byte, path string) ([]float64, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not valid JSON", core.ErrFetchFailed)
	}

	var values []float64
	collect := func(v gjson.Result) {
		if v.Type == gjson.Number {
			values = append(values, v.Float())
		}
	}

	result := gjson.GetBytes(body, path)
	if result.IsArray() {
		result.ForEach(func(_, v gjson.Result) bool {
			collect(v)
			return true
		})
	} else {
		collect(result)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no numeric values found at %q", core.ErrFetchFailed, path)
	}
	return values, nil
}

package significance

import (
	"fmt"
	"strings"

	"gosigma/adapters/rng"
	"gosigma/domain/core"
	"gosigma/domain/stats"
	"gosigma/internal"
	"gosigma/ports"
)

// DefaultBlockSize is the number of trials that share one random stream
const DefaultBlockSize = 1024

// DefaultCodeVersion is stamped into manifests when the caller gives none
const DefaultCodeVersion = "dev"

// DegeneratePolicy decides what a zero null standard deviation turns into
type DegeneratePolicy string

const (
	// DegenerateFail returns the result together with ErrDegenerateDistribution; sigma is NaN
	DegenerateFail DegeneratePolicy = "fail"
	// DegenerateZero reports sigma as 0 and no error
	DegenerateZero DegeneratePolicy = "zero"
	// DegenerateInfinite reports sigma as ±Inf (0 when observed equals the mean) and no error
	DegenerateInfinite DegeneratePolicy = "infinite"
)

// ParseDegeneratePolicy accepts fail, zero or infinite
func ParseDegeneratePolicy(s string) (DegeneratePolicy, error) {
	switch DegeneratePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DegenerateFail:
		return DegenerateFail, nil
	case DegenerateZero:
		return DegenerateZero, nil
	case DegenerateInfinite, "inf":
		return DegenerateInfinite, nil
	}
	return "", fmt.Errorf("unknown degenerate policy %q", s)
}

// Config carries everything a run needs so that no state leaks between runs
type Config struct {
	Trials    int
	Seed      uint64
	Workers   int // 0 or 1 runs sequentially
	BlockSize int
	Direction stats.Direction

	// Tolerance > 0 counts null scores within ±Tolerance of the observation
	Tolerance  float64
	Degenerate DegeneratePolicy

	RNG    ports.RNGPort
	Logger *internal.Logger

	DatasetHash core.Hash
	CodeVersion string
}

// withDefaults fills zero values without touching Trials, which must be explicit
func (c Config) withDefaults() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Direction == "" {
		c.Direction = stats.DirectionGreater
	}
	if c.Degenerate == "" {
		c.Degenerate = DegenerateFail
	}
	if c.RNG == nil {
		c.RNG = rng.NewAdapter()
	}
	if c.Logger == nil {
		c.Logger = internal.DefaultLogger
	}
	if c.CodeVersion == "" {
		c.CodeVersion = DefaultCodeVersion
	}
	return c
}

// Validate rejects configurations that cannot produce a result
func (c Config) Validate() error {
	if c.Trials <= 0 {
		return core.NewConfigurationError("trials", fmt.Sprintf("must be a positive integer, got %d", c.Trials))
	}
	if c.BlockSize <= 0 {
		return core.NewConfigurationError("block_size", fmt.Sprintf("must be positive, got %d", c.BlockSize))
	}
	if c.Tolerance < 0 {
		return core.NewConfigurationError("tolerance", "must not be negative")
	}
	if _, err := stats.ParseDirection(string(c.Direction)); err != nil {
		return core.NewConfigurationError("direction", err.Error())
	}
	if _, err := ParseDegeneratePolicy(string(c.Degenerate)); err != nil {
		return core.NewConfigurationError("degenerate", err.Error())
	}
	return nil
}

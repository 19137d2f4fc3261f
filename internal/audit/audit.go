// Package audit wires concrete null-hypothesis experiments to the
// significance tester. Each audit owns its observation, null generator and
// score; the tester owns sampling, statistics and determinism.
package audit

import (
	"context"
	"sort"

	"gosigma/adapters/rng"
	"gosigma/domain/stats"
	"gosigma/internal"
	apperrors "gosigma/internal/errors"
	"gosigma/internal/prompt"
	"gosigma/internal/significance"
	"gosigma/ports"
)

// Env carries the run configuration and the collaborators an audit may need
type Env struct {
	Config significance.Config

	// Input is a file path for audits that read data; Column selects a
	// spreadsheet column.
	Input  string
	Column string

	Gate    prompt.Gate
	Fetcher ports.CatalogFetcher
	Logger  *internal.Logger
}

func (e Env) logger() *internal.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	if e.Config.Logger != nil {
		return e.Config.Logger
	}
	return internal.DefaultLogger
}

func (e Env) rng() ports.RNGPort {
	if e.Config.RNG != nil {
		return e.Config.RNG
	}
	return rng.NewAdapter()
}

// config returns the tester config with the env's logger and RNG filled in
func (e Env) config() significance.Config {
	cfg := e.Config
	cfg.Logger = e.logger()
	cfg.RNG = e.rng()
	return cfg
}

// Outcome is an audit result plus where its observation came from
type Outcome struct {
	Audit  string
	Source string
	Result *stats.TestResult
}

// Audit is one runnable experiment. Run returns a non-nil Outcome alongside a
// degenerate-distribution error so callers can still report the run.
type Audit interface {
	Name() string
	Description() string
	Run(ctx context.Context, env Env) (*Outcome, error)
}

// Registry looks audits up by name
type Registry struct {
	audits map[string]Audit
}

func NewRegistry(audits ...Audit) *Registry {
	r := &Registry{audits: make(map[string]Audit, len(audits))}
	for _, a := range audits {
		r.audits[a.Name()] = a
	}
	return r
}

// Default returns every built-in audit with its default parameters
func Default() *Registry {
	return NewRegistry(
		NewLatticeNoise(DefaultLatticeNoiseParams()),
		NewInertModulus(DefaultInertModulusParams()),
		NewStellarClumping(DefaultStellarClumpingParams()),
		NewPrimeLock(DefaultPrimeLockParams()),
		NewWavAlignment(DefaultWavAlignmentParams()),
		NewSeriesPermutation(DefaultSeriesPermutationParams()),
		NewConstantUniqueness(DefaultConstantUniquenessParams()),
	)
}

// Get returns the named audit or a NOT_FOUND error
func (r *Registry) Get(name string) (Audit, error) {
	a, ok := r.audits[name]
	if !ok {
		return nil, apperrors.NotFound("audit " + name)
	}
	return a, nil
}

// List returns the audits sorted by name
func (r *Registry) List() []Audit {
	out := make([]Audit, 0, len(r.audits))
	for _, a := range r.audits {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// finish packs a tester result; the degenerate error still carries a result
func finish(name, source string, result *stats.TestResult, err error) (*Outcome, error) {
	if result == nil {
		return nil, err
	}
	return &Outcome{Audit: name, Source: source, Result: result}, err
}

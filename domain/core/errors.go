package core

import (
	"errors"
	"fmt"
)

// Tester errors
var (
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrInvalidObservation     = errors.New("invalid observation")
	ErrDegenerateDistribution = errors.New("degenerate null distribution")
)

// Collaborator errors
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrFetchFailed     = errors.New("remote fetch failed")
)

// Determinism errors
var (
	ErrSeedMismatch    = errors.New("seed mismatch")
	ErrInvariantBroken = errors.New("invariant violated")
)

// NewConfigurationError reports a rejected configuration field
func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfiguration, field, reason)
}

// NewObservationError reports a non-finite score
func NewObservationError(source string, value float64) error {
	return fmt.Errorf("%w: %s produced non-finite score %v", ErrInvalidObservation, source, value)
}

// NewDataUnavailableError wraps an ingestion failure
func NewDataUnavailableError(resource string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrDataUnavailable, resource)
	}
	return fmt.Errorf("%w: %s: %v", ErrDataUnavailable, resource, err)
}

// IsTesterError reports whether err is one of the tester error kinds
func IsTesterError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrInvalidObservation) ||
		errors.Is(err, ErrDegenerateDistribution)
}

func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrDataUnavailable)
}

func IsDeterminismError(err error) bool {
	return errors.Is(err, ErrSeedMismatch) ||
		errors.Is(err, ErrInvariantBroken)
}

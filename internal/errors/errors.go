package errors

import (
	stderrors "errors"
	"fmt"

	"gosigma/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an inner AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    codeForDomain(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError, the code implied by a
// domain sentinel, or "UNKNOWN"
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	if code := codeForDomain(err); code != CodeInternalError {
		return code
	}
	return "UNKNOWN"
}

// codeForDomain maps domain sentinels onto application codes
func codeForDomain(err error) string {
	switch {
	case stderrors.Is(err, core.ErrInvalidConfiguration):
		return CodeConfigInvalid
	case stderrors.Is(err, core.ErrInvalidObservation):
		return CodeInvalidObservation
	case stderrors.Is(err, core.ErrDegenerateDistribution):
		return CodeDegenerate
	case stderrors.Is(err, core.ErrDataUnavailable):
		return CodeDataUnavailable
	case stderrors.Is(err, core.ErrFetchFailed):
		return CodeExternalService
	case stderrors.Is(err, core.ErrSeedMismatch), stderrors.Is(err, core.ErrInvariantBroken):
		return CodeNonDeterministic
	default:
		return CodeInternalError
	}
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidObservation = "INVALID_OBSERVATION"
	CodeDegenerate         = "DEGENERATE_DISTRIBUTION"
	CodeDataUnavailable    = "DATA_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeNonDeterministic   = "NON_DETERMINISTIC"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeExternalService    = "EXTERNAL_SERVICE_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return &AppError{Code: CodeConfigInvalid, Message: message, Cause: core.ErrInvalidConfiguration}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: fmt.Sprintf("%s service error", service),
		Cause:   cause,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (declined prompt, invalid input, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrDeclined indicates the user explicitly declined a destructive or
	// ambiguous choice. This is one of the two fatal abort conditions.
	ErrDeclined = errors.New("declined by user")

	// ErrCancelled indicates an interactive prompt was cancelled (EOF).
	ErrCancelled = errors.New("prompt cancelled")

	// ErrNoTerminal indicates no controlling terminal is available for an
	// interactive prompt.
	ErrNoTerminal = errors.New("no controlling terminal")

	// ErrPrerequisites indicates required download prerequisites could not
	// be obtained. This is the other fatal abort condition.
	ErrPrerequisites = errors.New("required prerequisites unavailable")

	// ErrProfileNotFound indicates the requested environment profile does
	// not exist in the catalog.
	ErrProfileNotFound = errors.New("profile not found")
)

// IsUserAbort reports whether err stems from the user declining or
// cancelling an interactive choice rather than from a system failure.
func IsUserAbort(err error) bool {
	return errors.Is(err, ErrDeclined) ||
		errors.Is(err, ErrCancelled) ||
		errors.Is(err, ErrNoTerminal)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: nixup doctor",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

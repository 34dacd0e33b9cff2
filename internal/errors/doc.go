// Package errors provides error handling conventions for the nixup CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, nixuperrors.ErrDeclined) {
//	    // user said no to a destructive choice; abort
//	}
//
// The bootstrap has exactly two fatal abort conditions, both represented
// here: [ErrDeclined] (user refused to reuse an existing project directory)
// and [ErrPrerequisites] (download prerequisites unobtainable without
// elevated privilege). Everything else is a warning.
//
// # Exit Codes
//
// The package defines standard exit codes for CLI applications:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (declined prompt, invalid input, etc.)
//   - ExitSystem (2): System-related error (I/O, network, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion for CLI applications. It supports error unwrapping via
// [errors.Unwrap] and [errors.As]:
//
//	err := nixuperrors.NewUserError(nixuperrors.ErrDeclined, "Re-run after resolving manually")
//	var exitErr *nixuperrors.ExitError
//	if errors.As(err, &exitErr) {
//	    if exitErr.Suggestion != "" {
//	        fmt.Println("Suggestion:", exitErr.Suggestion)
//	    }
//	    os.Exit(exitErr.Code)
//	}
package errors

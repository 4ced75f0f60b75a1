// Package errors defines the user-facing error values of movierating.
//
// Every failure the program can report is one of the types in this package.
// Their Error methods return the exact diagnostic line printed on stderr, so
// callers can wrap them freely and still recover the message with Diagnostic.
package errors

import stdErrors "errors"

type diagnosticError interface {
	error
	diagnostic()
}

// Diagnostic returns the user-facing line for err.
// Wrapped errors resolve to the first typed error in the chain; untyped errors
// fall back to err.Error().
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var d diagnosticError
	if stdErrors.As(err, &d) {
		return d.Error()
	}
	return err.Error()
}
